package auditlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/taskprio/internal/adapters/auditlog"
	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/okian/taskprio/internal/domain/summary"
	. "github.com/smartystreets/goconvey/convey"
)

var runAt = time.Date(2026, 1, 23, 14, 15, 30, 0, time.UTC)

func fixedClock() time.Time { return runAt }

func rec(id string) model.ScoreRecord {
	return model.ScoreRecord{
		TaskID:        id,
		TaskName:      "task " + id,
		Timestamp:     runAt,
		PriorityScore: 0.87,
		PriorityLevel: scoring.LevelCritical,
		Factors:       scoring.Factors{Urgency: 9, Impact: 10, Effort: 3, Dependencies: 1, Risk: 9},
		Weights:       scoring.DefaultWeights(),
	}
}

func readRecords(path string) []model.ScoreRecord {
	data, err := os.ReadFile(path)
	So(err, ShouldBeNil)
	records, skipped, err := summary.Decode(data)
	So(err, ShouldBeNil)
	So(skipped, ShouldEqual, 0)
	return records
}

func logFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	So(err, ShouldBeNil)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFileName(t *testing.T) {
	Convey("Given a run timestamp", t, func() {
		Convey("Then names embed the UTC time with second resolution", func() {
			local := runAt.In(time.FixedZone("PST", -8*3600))
			So(auditlog.FileName(local, "0a1b2c3d"), ShouldEqual, "task-prioritization-20260123-141530-0a1b2c3d.json")
			So(auditlog.FileName(runAt, ""), ShouldEqual, "task-prioritization-20260123-141530.json")
		})

		Convey("Then both legacy and tokened names parse", func() {
			for _, name := range []string{
				"task-prioritization-20260123-141530.json",
				"task-prioritization-20260123-141530-0a1b2c3d.json",
			} {
				ts, ok := auditlog.ParseFileName(name)
				So(ok, ShouldBeTrue)
				So(ts, ShouldEqual, runAt)
			}
		})

		Convey("Then unrelated names are ignored", func() {
			for _, name := range []string{
				"task-prioritization-2026-01-23.json",
				"task-prioritization-20260123-141530.json.bak",
				".task-prioritization-123.tmp",
				"deploy-20260123-141530.json",
				"task-prioritization-20260123-141530-XYZ.json",
			} {
				_, ok := auditlog.ParseFileName(name)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestFileRecorder(t *testing.T) {
	Convey("Given a recorder over a missing directory", t, func() {
		dir := filepath.Join(t.TempDir(), "logs", "audit")
		r := auditlog.NewFileRecorder(dir,
			auditlog.WithClock(fixedClock),
			auditlog.WithToken(func() string { return "0a1b2c3d" }),
		)
		ctx := context.Background()

		Convey("Then nothing is written before the first append", func() {
			So(r.Path(), ShouldEqual, "")
			_, err := os.Stat(dir)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("When one record is appended", func() {
			err := r.Append(ctx, rec("TASK-001"))

			Convey("Then the directory and a single-object file are created", func() {
				So(err, ShouldBeNil)
				So(r.Path(), ShouldEqual, filepath.Join(dir, "task-prioritization-20260123-141530-0a1b2c3d.json"))
				So(r.Count(), ShouldEqual, 1)

				data, err := os.ReadFile(r.Path())
				So(err, ShouldBeNil)
				var got model.ScoreRecord
				So(json.Unmarshal(data, &got), ShouldBeNil)
				So(got, ShouldResemble, rec("TASK-001"))
			})

			Convey("And more records are appended in the same run", func() {
				So(r.Append(ctx, rec("TASK-002"), rec("TASK-003")), ShouldBeNil)

				Convey("Then they are appended to the run's file one line each", func() {
					So(logFiles(dir), ShouldResemble, []string{"task-prioritization-20260123-141530-0a1b2c3d.json"})

					data, err := os.ReadFile(r.Path())
					So(err, ShouldBeNil)
					So(bytes.Count(data, []byte("\n")), ShouldEqual, 3)
					got := readRecords(r.Path())
					So(len(got), ShouldEqual, 3)
					So(got[0].TaskID, ShouldEqual, "TASK-001")
					So(got[2].TaskID, ShouldEqual, "TASK-003")
					So(r.Count(), ShouldEqual, 3)
				})
			})
		})

		Convey("When appending nothing", func() {
			So(r.Append(ctx), ShouldBeNil)

			Convey("Then no file is created", func() {
				So(r.Path(), ShouldEqual, "")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then nothing is written", func() {
				So(r.Append(cctx, rec("TASK-001")), ShouldEqual, context.Canceled)
				So(r.Path(), ShouldEqual, "")
			})
		})
	})

	Convey("Given two runs started in the same second", t, func() {
		dir := t.TempDir()
		tokens := []string{"00000001", "00000001", "00000002"}
		var mu sync.Mutex
		next := func() string {
			mu.Lock()
			defer mu.Unlock()
			tok := tokens[0]
			tokens = tokens[1:]
			return tok
		}
		a := auditlog.NewFileRecorder(dir, auditlog.WithClock(fixedClock), auditlog.WithToken(next))
		b := auditlog.NewFileRecorder(dir, auditlog.WithClock(fixedClock), auditlog.WithToken(next))

		Convey("When both append", func() {
			So(a.Append(context.Background(), rec("A")), ShouldBeNil)
			So(b.Append(context.Background(), rec("B")), ShouldBeNil)

			Convey("Then a token collision falls through to a fresh name", func() {
				So(a.Path(), ShouldNotEqual, b.Path())
				So(logFiles(dir), ShouldResemble, []string{
					"task-prioritization-20260123-141530-00000001.json",
					"task-prioritization-20260123-141530-00000002.json",
				})
			})
		})
	})

	Convey("Given concurrent appends to one recorder", t, func() {
		dir := t.TempDir()
		r := auditlog.NewFileRecorder(dir)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.Append(context.Background(), rec("T"))
			}()
		}
		wg.Wait()

		Convey("Then every record lands in the single file", func() {
			So(len(readRecords(r.Path())), ShouldEqual, 10)
			So(len(logFiles(dir)), ShouldEqual, 1)
		})
	})

	Convey("Given an audit path that is a regular file", t, func() {
		path := filepath.Join(t.TempDir(), "audit")
		So(os.WriteFile(path, []byte("x"), 0o600), ShouldBeNil)
		r := auditlog.NewFileRecorder(path)

		Convey("Then append fails with ErrCreateLog", func() {
			err := r.Append(context.Background(), rec("T"))
			So(errors.Is(err, auditlog.ErrCreateLog), ShouldBeTrue)
		})
	})
}

func TestFileRecorderLongRun(t *testing.T) {
	Convey("Given a run of many single-record appends", t, func() {
		dir := t.TempDir()
		r := auditlog.NewFileRecorder(dir)
		ctx := context.Background()
		for i := 0; i < 300; i++ {
			So(r.Append(ctx, rec(fmt.Sprintf("L%03d", i))), ShouldBeNil)
		}

		Convey("Then each append writes only its own record", func() {
			info, err := os.Stat(r.Path())
			So(err, ShouldBeNil)
			So(r.BytesWritten(), ShouldEqual, info.Size())
			So(r.Count(), ShouldEqual, 300)
		})

		Convey("Then the run still has one file and no temporary leftovers", func() {
			So(logFiles(dir), ShouldResemble, []string{filepath.Base(r.Path())})
		})

		Convey("Then a summary reads them back, latest append first", func() {
			files, err := auditlog.NewDirReader(dir).ReadAll(ctx)
			So(err, ShouldBeNil)
			report, stats, err := summary.Build(files, 1000)
			So(err, ShouldBeNil)
			So(stats.Skipped, ShouldEqual, 0)
			So(report.TasksSummarized, ShouldEqual, 300)
			So(report.Tasks[0].TaskID, ShouldEqual, "L299")
			So(report.Tasks[299].TaskID, ShouldEqual, "L000")
		})
	})

	Convey("Given a file with a torn last line", t, func() {
		dir := t.TempDir()
		r := auditlog.NewFileRecorder(dir)
		ctx := context.Background()
		So(r.Append(ctx, rec("A"), rec("B")), ShouldBeNil)

		f, err := os.OpenFile(r.Path(), os.O_WRONLY|os.O_APPEND, 0o644)
		So(err, ShouldBeNil)
		_, err = f.WriteString(`{"task_id":"C","task_na`)
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("Then a summary keeps the complete records and skips the tail", func() {
			files, err := auditlog.NewDirReader(dir).ReadAll(ctx)
			So(err, ShouldBeNil)
			report, stats, err := summary.Build(files, 10)
			So(err, ShouldBeNil)
			So(report.TasksSummarized, ShouldEqual, 2)
			So(stats.Skipped, ShouldEqual, 1)
		})
	})
}

func TestFileRecorderPublish(t *testing.T) {
	Convey("Given a name already taken by another process", t, func() {
		dir := t.TempDir()
		taken := filepath.Join(dir, auditlog.FileName(runAt, "0a1b2c3d"))
		So(os.WriteFile(taken, []byte(`{"task_id":"other"}`), 0o600), ShouldBeNil)

		r := auditlog.NewFileRecorder(dir,
			auditlog.WithClock(fixedClock),
			auditlog.WithToken(func() string { return "0a1b2c3d" }),
		)

		Convey("Then the existing file is never overwritten", func() {
			err := r.Append(context.Background(), rec("TASK-001"))
			So(errors.Is(err, auditlog.ErrCreateLog), ShouldBeTrue)

			data, rerr := os.ReadFile(taken)
			So(rerr, ShouldBeNil)
			So(string(data), ShouldEqual, `{"task_id":"other"}`)
			So(logFiles(dir), ShouldResemble, []string{filepath.Base(taken)})
		})
	})

	Convey("Given a first write", t, func() {
		dir := t.TempDir()
		r := auditlog.NewFileRecorder(dir)
		So(r.Append(context.Background(), rec("TASK-001")), ShouldBeNil)

		Convey("Then the published file is complete and alone", func() {
			So(len(logFiles(dir)), ShouldEqual, 1)
			data, err := os.ReadFile(r.Path())
			So(err, ShouldBeNil)
			var got model.ScoreRecord
			So(json.Unmarshal(data, &got), ShouldBeNil)
			So(got.TaskID, ShouldEqual, "TASK-001")
			So(r.BytesWritten(), ShouldEqual, int64(len(data)))
		})
	})
}

func TestDirReader(t *testing.T) {
	Convey("Given a directory that does not exist", t, func() {
		reader := auditlog.NewDirReader(filepath.Join(t.TempDir(), "missing"))

		Convey("Then reading reports no logs", func() {
			_, err := reader.ReadAll(context.Background())
			So(errors.Is(err, summary.ErrNoLogsFound), ShouldBeTrue)
		})
	})

	Convey("Given a directory with logs and unrelated files", t, func() {
		dir := t.TempDir()
		write := func(name, body string) {
			So(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600), ShouldBeNil)
		}
		write("task-prioritization-20260122-090000.json", `{"task_id":"old"}`)
		write("task-prioritization-20260123-141530-0a1b2c3d.json", `{"task_id":"new"}`)
		write("task-prioritization-20260123-080000.json", `{"task_id":"mid"}`)
		write("deploy-20260123-141530.json", `{}`)
		write("notes.txt", "ignore me")
		So(os.Mkdir(filepath.Join(dir, "task-prioritization-20260124-000000.json"), 0o755), ShouldBeNil)

		reader := auditlog.NewDirReader(dir)

		Convey("When listing", func() {
			names, err := reader.List(context.Background())

			Convey("Then only log files are returned, newest first", func() {
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{
					"task-prioritization-20260123-141530-0a1b2c3d.json",
					"task-prioritization-20260123-080000.json",
					"task-prioritization-20260122-090000.json",
				})
			})
		})

		Convey("When reading", func() {
			files, err := reader.ReadAll(context.Background())

			Convey("Then contents come back in the same order", func() {
				So(err, ShouldBeNil)
				So(len(files), ShouldEqual, 3)
				So(string(files[0].Data), ShouldEqual, `{"task_id":"new"}`)
				So(string(files[2].Data), ShouldEqual, `{"task_id":"old"}`)
			})

			Convey("And the source files are untouched", func() {
				So(len(logFiles(dir)), ShouldEqual, 6)
			})
		})
	})

	Convey("Given an empty directory", t, func() {
		reader := auditlog.NewDirReader(t.TempDir())

		Convey("Then reading reports no logs", func() {
			_, err := reader.ReadAll(context.Background())
			So(errors.Is(err, summary.ErrNoLogsFound), ShouldBeTrue)
		})
	})

	Convey("Given records written by a recorder", t, func() {
		dir := t.TempDir()
		r := auditlog.NewFileRecorder(dir)
		So(r.Append(context.Background(), rec("A"), rec("B")), ShouldBeNil)

		Convey("Then the reader and summary round-trip them", func() {
			files, err := auditlog.NewDirReader(dir).ReadAll(context.Background())
			So(err, ShouldBeNil)
			report, _, err := summary.Build(files, 10)
			So(err, ShouldBeNil)
			So(report.TasksSummarized, ShouldEqual, 2)
			So(report.Tasks[0].TaskID, ShouldEqual, "B")
		})
	})
}
