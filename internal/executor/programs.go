package executor

import (
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ProgramCache resolves program names on PATH once per invocation. It is
// safe for concurrent use by parallel workers.
type ProgramCache struct {
	mu       sync.Mutex
	resolved map[string]resolution
	lookPath func(string) (string, error)
}

type resolution struct {
	path string
	err  error
}

func NewProgramCache() *ProgramCache {
	return &ProgramCache{
		resolved: map[string]resolution{},
		lookPath: exec.LookPath,
	}
}

// Resolve returns an executable path for program. Names containing a path
// separator are not searched on PATH; relative ones are taken relative to
// workingDir and never cached.
func (c *ProgramCache) Resolve(program, workingDir string) (string, error) {
	if strings.ContainsRune(program, '/') || strings.ContainsRune(program, filepath.Separator) {
		if !filepath.IsAbs(program) && workingDir != "" {
			program = filepath.Join(workingDir, program)
		}
		return c.lookPath(program)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.resolved[program]; ok {
		return hit.path, hit.err
	}
	path, err := c.lookPath(program)
	c.resolved[program] = resolution{path: path, err: err}
	return path, err
}

// Len reports how many bare program names have been resolved.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.resolved)
}
