package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/spf13/cobra"
)

func (c *cli) batchCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "batch <file.json|->",
		Short: "Score several tasks from a JSON file into one batch log",
		Long: `Reads a JSON array of tasks (or a single task object) with the fields
task_id, task_name, urgency, impact, effort, dependencies and risk. Every task
is validated before anything is written; one invalid task fails the batch.`,
		Example: `  taskprio batch tasks.json
  cat tasks.json | taskprio batch -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(outputFmt); err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			inputs, err := decodeTasks(data)
			if err != nil {
				return err
			}

			svc, err := c.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			out, err := svc.ScoreBatch(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outputFmt == outputJSON {
				views := make([]scoredView, 0, len(out))
				for _, s := range out {
					views = append(views, newScoredView(s, true))
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			for _, s := range out {
				if _, err := fmt.Fprintf(w, "%s %s\n", s.Record.TaskID, scoreLine(s.Record)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", outputText, "Output format: text or json")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeTasks accepts a single task object or an array of them.
func decodeTasks(data []byte) ([]scoring.Input, error) {
	data = bytes.TrimSpace(data)
	var tasks []model.TaskInput
	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty batch", model.ErrInvalidTask)
	case data[0] == '[':
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidTask, err)
		}
	default:
		var one model.TaskInput
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidTask, err)
		}
		tasks = []model.TaskInput{one}
	}

	inputs := make([]scoring.Input, 0, len(tasks))
	for i, t := range tasks {
		in, err := t.Input()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
