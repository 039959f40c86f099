package job

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"dispatchsim/internal/sched"
)

// Workload is the YAML form of a dispatch list.
type Workload struct {
	Jobs []sched.Descriptor `yaml:"jobs"`
}

// Load reads a dispatch list from path. Files ending in .yml or .yaml are
// decoded as a Workload, anything else as plain text records.
func Load(path string, log logrus.FieldLogger) ([]sched.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ParseYAML(f)
	default:
		return Parse(f, log.WithField("file", path))
	}
}

// Parse reads whitespace separated records of the form
//
//	id arrival priority exec_time memory [resources]
//
// Blank lines and lines starting with '#' are ignored. Records with the wrong
// number of fields or a non-numeric field are skipped with a warning.
func Parse(r io.Reader, log logrus.FieldLogger) ([]sched.Descriptor, error) {
	var out []sched.Descriptor

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		d, err := parseRecord(line)
		if err != nil {
			log.WithField("line", lineNo).WithError(err).Warn("Skipping malformed record")
			continue
		}
		log.WithField("job", d.ID).Debug("Loaded process")
		out = append(out, d)
	}
	if err := sc.Err(); err != nil {
		return out, errors.WithStack(err)
	}
	return out, nil
}

func parseRecord(line string) (sched.Descriptor, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 && len(fields) != 6 {
		return sched.Descriptor{}, errors.Errorf("expected 5 or 6 fields, got %d", len(fields))
	}

	nums := make([]int64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return sched.Descriptor{}, errors.Wrapf(err, "field %d", i+1)
		}
		nums[i] = n
	}
	if nums[0] <= 0 {
		return sched.Descriptor{}, errors.Errorf("job id must be positive, got %d", nums[0])
	}

	d := sched.Descriptor{
		ID:       sched.JobID(nums[0]),
		Arrival:  nums[1],
		Priority: int(nums[2]),
		ExecTime: nums[3],
		Memory:   int(nums[4]),
	}
	if len(nums) == 6 {
		d.Resources = int(nums[5])
	}
	return d, nil
}

// ParseYAML decodes a Workload document.
func ParseYAML(r io.Reader) ([]sched.Descriptor, error) {
	var w Workload
	if err := yaml.NewDecoder(r).Decode(&w); err != nil {
		return nil, errors.Wrap(err, "decode workload")
	}
	return w.Jobs, nil
}
