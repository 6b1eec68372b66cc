package bench_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
)

// fakeEngine writes an executable script standing in for an engine binary.
func fakeEngine(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	script := "#!/bin/sh\n" + body + "\n"

	err := os.WriteFile(path, []byte(script), 0o755)
	if err != nil {
		t.Fatalf("write fake engine: %v", err)
	}

	return path
}

func testWorkload() bench.Workload {
	return bench.Workload{PerftDepth: 5, ExpectedNodes: 4865609}
}

func TestValidatePasses(t *testing.T) {
	dir := t.TempDir()
	engine := fakeEngine(t, dir, "engine", `cat > /dev/null; echo "Nodes: 4865609"`)

	v := &bench.Validator{Workload: testWorkload(), Timeout: 5 * time.Second, Dir: dir}

	outcome := v.Validate(context.Background(), engine)
	assert.True(t, outcome.Passed)
	assert.Empty(t, outcome.Reason)
}

func TestValidateNodeCountMismatch(t *testing.T) {
	dir := t.TempDir()
	engine := fakeEngine(t, dir, "engine", `cat > /dev/null; echo "Nodes: 42"`)

	v := &bench.Validator{Workload: testWorkload(), Timeout: 5 * time.Second, Dir: dir}

	outcome := v.Validate(context.Background(), engine)
	assert.False(t, outcome.Passed)
	assert.Equal(t, fmt.Sprintf("result_mismatch: expected %d got %d", 4865609, 42), outcome.Reason)
}

func TestValidateNoResult(t *testing.T) {
	dir := t.TempDir()
	engine := fakeEngine(t, dir, "engine", `cat > /dev/null; echo "id name testengine"`)

	v := &bench.Validator{Workload: testWorkload(), Timeout: 5 * time.Second, Dir: dir}

	outcome := v.Validate(context.Background(), engine)
	assert.False(t, outcome.Passed)
	assert.Equal(t, bench.ReasonNoResult, outcome.Reason)
}

func TestValidateProcessFailure(t *testing.T) {
	dir := t.TempDir()
	engine := fakeEngine(t, dir, "engine", `exit 1`)

	v := &bench.Validator{Workload: testWorkload(), Timeout: 5 * time.Second, Dir: dir}

	outcome := v.Validate(context.Background(), engine)
	assert.False(t, outcome.Passed)
	assert.Equal(t, bench.ReasonProcessFailed, outcome.Reason)
}

func TestValidateMissingBinary(t *testing.T) {
	dir := t.TempDir()

	v := &bench.Validator{Workload: testWorkload(), Timeout: 5 * time.Second, Dir: dir}

	outcome := v.Validate(context.Background(), filepath.Join(dir, "missing"))
	assert.False(t, outcome.Passed)
	assert.Equal(t, bench.ReasonProcessFailed, outcome.Reason)
}
