package config_test

import (
	"testing"

	"github.com/okian/taskprio/internal/config"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.AuditDir, convey.ShouldEqual, "logs/audit")
			convey.So(cfg.ScoringConfig, convey.ShouldEqual, "config/task-prioritization.yaml")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DefaultSummaryLimit, convey.ShouldEqual, 100)
			convey.So(cfg.MaxSummaryLimit, convey.ShouldEqual, 10_000)
			convey.So(cfg.Policy(), convey.ShouldEqual, scoring.PolicyReject)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "taskprio")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
