package job

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatchsim/internal/sched"
)

const dispatchList = `# id arrival priority exec memory
1 0 0 5 50
2 1 1 5 100

3 2 1 1 200 4
4 3 1 x 10
5 3 1
6 4 2 3 16 1 9
-7 4 2 3 16
`

func TestParse(t *testing.T) {
	logger, hook := test.NewNullLogger()

	descs, err := Parse(strings.NewReader(dispatchList), logger)
	require.NoError(t, err)

	assert.Equal(t, []sched.Descriptor{
		{ID: 1, Arrival: 0, Priority: 0, ExecTime: 5, Memory: 50},
		{ID: 2, Arrival: 1, Priority: 1, ExecTime: 5, Memory: 100},
		{ID: 3, Arrival: 2, Priority: 1, ExecTime: 1, Memory: 200, Resources: 4},
	}, descs)

	var skipped []int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			skipped = append(skipped, e.Data["line"].(int))
		}
	}
	assert.Equal(t, []int{6, 7, 8, 9}, skipped)
}

func TestLoad(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()

	txt := filepath.Join(dir, "jobs.txt")
	require.NoError(t, os.WriteFile(txt, []byte(dispatchList), 0o644))
	descs, err := Load(txt, logger)
	require.NoError(t, err)
	assert.Len(t, descs, 3)

	yml := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(`jobs:
  - id: 1
    priority: 0
    exec_time: 5
    memory: 50
  - id: 2
    arrival: 3
    priority: 3
    exec_time: 4
    memory: 8
`), 0o644))
	descs, err = Load(yml, logger)
	require.NoError(t, err)
	assert.Equal(t, []sched.Descriptor{
		{ID: 1, Priority: 0, ExecTime: 5, Memory: 50},
		{ID: 2, Arrival: 3, Priority: 3, ExecTime: 4, Memory: 8},
	}, descs)

	_, err = Load(filepath.Join(dir, "missing.txt"), logger)
	assert.Error(t, err)
}
