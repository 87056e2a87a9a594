package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// DefaultCommand merges the raw exports into sorted_merged.csv
const DefaultCommand = "bash merged_sort_csv.sh"

// ScriptPreprocessor runs an external merge script
type ScriptPreprocessor struct {
	Command string
	Dir     string
	Output  string
}

// Run executes the command and checks that it produced Output
func (s *ScriptPreprocessor) Run(ctx context.Context) (string, error) {
	args, err := shellwords.Parse(s.Command)
	if err != nil {
		return "", &PreprocessError{Step: s.Command, Err: errors.Wrap(err, "parse command")}
	}
	if len(args) == 0 {
		return "", &PreprocessError{Step: s.Command, Err: errors.New("empty command")}
	}

	bin, err := exec.LookPath(args[0])
	if err != nil {
		return "", &PreprocessNotFoundError{Name: args[0], Err: err}
	}
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		script := s.resolve(args[1])
		if _, err := os.Stat(script); err != nil {
			return "", &PreprocessNotFoundError{Name: args[1], Err: err}
		}
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args[1:]...)
	cmd.Dir = s.Dir
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
		return "", &PreprocessError{Step: s.Command, Stderr: stderr.String(), Err: err}
	}

	output := s.resolve(s.Output)
	if _, err := os.Stat(output); err != nil {
		return "", &PreprocessError{
			Step:   s.Command,
			Stderr: stderr.String(),
			Err:    errors.Wrapf(err, "expected output %s", output),
		}
	}
	return output, nil
}

func (s *ScriptPreprocessor) resolve(path string) string {
	if s.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Dir, path)
}
