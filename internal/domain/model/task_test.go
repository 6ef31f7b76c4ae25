package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestTaskInput(t *testing.T) {
	convey.Convey("Given a task submitted as JSON", t, func() {
		convey.Convey("When every field is present", func() {
			var task model.TaskInput
			err := json.Unmarshal([]byte(`{"task_id":"TASK-001","task_name":"Fix critical bug",
				"urgency":9,"impact":10,"effort":3,"dependencies":0,"risk":9}`), &task)
			convey.So(err, convey.ShouldBeNil)

			in, err := task.Input()

			convey.Convey("Then it converts, keeping a zero factor", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(in.TaskID, convey.ShouldEqual, "TASK-001")
				convey.So(in.Factors, convey.ShouldResemble, scoring.Factors{Urgency: 9, Impact: 10, Effort: 3, Dependencies: 0, Risk: 9})
			})
		})

		convey.Convey("When a factor is missing", func() {
			var task model.TaskInput
			_ = json.Unmarshal([]byte(`{"task_id":"T","urgency":9,"impact":10,"effort":3,"risk":9}`), &task)

			_, err := task.Input()

			convey.Convey("Then the task is invalid and the factor is named", func() {
				convey.So(errors.Is(err, model.ErrInvalidTask), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "dependencies")
			})
		})

		convey.Convey("When the task id is blank", func() {
			_, err := model.TaskInput{TaskID: "  "}.Input()

			convey.Convey("Then the task is invalid", func() {
				convey.So(errors.Is(err, model.ErrInvalidTask), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLevelTable(t *testing.T) {
	convey.Convey("Given the default thresholds", t, func() {
		table := model.LevelTable(scoring.DefaultThresholds())

		convey.Convey("Then tiers are listed highest first with readable SLAs", func() {
			convey.So(table, convey.ShouldResemble, []model.LevelInfo{
				{Level: scoring.LevelCritical, MinScore: 0.75, SLA: "4h"},
				{Level: scoring.LevelHigh, MinScore: 0.60, SLA: "24h"},
				{Level: scoring.LevelMedium, MinScore: 0.40, SLA: "72h"},
				{Level: scoring.LevelLow, MinScore: 0, SLA: "168h"},
			})
		})
	})
}
