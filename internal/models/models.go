package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Task is one queued shell command: a program, its arguments, the directory
// it runs in and any environment it adds on top of the caller's.
type Task struct {
	Program    string            `json:"program" yaml:"program"`
	Args       []string          `json:"args" yaml:"args"`
	WorkingDir string            `json:"working_dir" yaml:"working_dir"`
	ExtraEnv   map[string]string `json:"extra_env,omitempty" yaml:"extra_env,omitempty"`
}

// NewTask builds a task, copying args and env so later caller mutation has no effect.
func NewTask(program string, args []string, workingDir string, extraEnv map[string]string) Task {
	return Task{
		Program:    program,
		Args:       append([]string{}, args...),
		WorkingDir: workingDir,
		ExtraEnv:   copyEnv(extraEnv),
	}
}

// Clone returns an independent deep copy.
func (t Task) Clone() Task {
	return NewTask(t.Program, t.Args, t.WorkingDir, t.ExtraEnv)
}

// ContainsPlaceholder reports whether token occurs in the program, any
// argument or the working directory.
func (t Task) ContainsPlaceholder(token string) bool {
	if token == "" {
		return false
	}
	if strings.Contains(t.Program, token) || strings.Contains(t.WorkingDir, token) {
		return true
	}
	for _, arg := range t.Args {
		if strings.Contains(arg, token) {
			return true
		}
	}
	return false
}

// WithPlaceholder clones the task replacing every occurrence of token with value.
func (t Task) WithPlaceholder(token, value string) Task {
	out := t.Clone()
	out.Program = strings.ReplaceAll(out.Program, token, value)
	out.WorkingDir = strings.ReplaceAll(out.WorkingDir, token, value)
	for idx, arg := range out.Args {
		out.Args[idx] = strings.ReplaceAll(arg, token, value)
	}
	return out
}

// CommandLine renders the program and arguments the way a user would type them.
func (t Task) CommandLine() string {
	parts := make([]string, 0, len(t.Args)+1)
	parts = append(parts, quoteArg(t.Program))
	for _, arg := range t.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// SameCommand compares program, arguments and working directory; env is ignored.
func (t Task) SameCommand(other Task) bool {
	if t.Program != other.Program || t.WorkingDir != other.WorkingDir || len(t.Args) != len(other.Args) {
		return false
	}
	for idx := range t.Args {
		if t.Args[idx] != other.Args[idx] {
			return false
		}
	}
	return true
}

// EnvPairs returns the extra environment as sorted KEY=VALUE strings.
func (t Task) EnvPairs() []string {
	keys := make([]string, 0, len(t.ExtraEnv))
	for key := range t.ExtraEnv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key+"="+t.ExtraEnv[key])
	}
	return out
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n'\"\\$`;&|<>*?()[]{}#~") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func copyEnv(env map[string]string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	out := make(map[string]string, len(env))
	for key, value := range env {
		out[key] = value
	}
	return out
}

// RunID identifies one execution attempt of one task within one `do` invocation.
type RunID struct {
	RunEpochSeconds uint32 `json:"run_epoch_seconds" yaml:"run_epoch_seconds"`
	RunGroup        uint32 `json:"run_group" yaml:"run_group"`
	Sequence        uint32 `json:"sequence" yaml:"sequence"`
}

func (r RunID) String() string {
	return fmt.Sprintf("%d-%08x-%d", r.RunEpochSeconds, r.RunGroup, r.Sequence)
}

// Entry is either Pending or Running. The unexported method closes the set.
type Entry interface {
	EntryTask() Task
	isEntry()
}

// Pending is a queued task nobody has claimed yet.
type Pending struct {
	Task Task
}

// Running is a task claimed by some invocation, which may still be working
// on it or may have died.
type Running struct {
	Task  Task
	RunID RunID
}

func (p Pending) EntryTask() Task { return p.Task }
func (Pending) isEntry() {}

func (r Running) EntryTask() Task { return r.Task }
func (Running) isEntry() {}

// IsRunning reports whether the entry has been claimed.
func IsRunning(entry Entry) bool {
	_, ok := entry.(Running)
	return ok
}

const (
	tagPending = "Pending"
	tagRunning = "Running"
)

type runningPayload struct {
	Task  Task  `json:"task" yaml:"task"`
	RunID RunID `json:"run_id" yaml:"run_id"`
}

type pendingPayload struct {
	Task Task `json:"task" yaml:"task"`
}

type entryEnvelope struct {
	Pending *pendingPayload `json:"Pending,omitempty" yaml:"Pending,omitempty"`
	Running *runningPayload `json:"Running,omitempty" yaml:"Running,omitempty"`
}

func envelopeFor(entry Entry) (entryEnvelope, error) {
	switch value := entry.(type) {
	case Pending:
		return entryEnvelope{Pending: &pendingPayload{Task: value.Task}}, nil
	case Running:
		return entryEnvelope{Running: &runningPayload{Task: value.Task, RunID: value.RunID}}, nil
	default:
		return entryEnvelope{}, fmt.Errorf("unknown stack entry type %T", entry)
	}
}

func (e entryEnvelope) entry() (Entry, error) {
	switch {
	case e.Pending != nil && e.Running != nil:
		return nil, errors.New("stack entry has both Pending and Running tags")
	case e.Pending != nil:
		return Pending{Task: e.Pending.Task}, nil
	case e.Running != nil:
		return Running{Task: e.Running.Task, RunID: e.Running.RunID}, nil
	default:
		return nil, fmt.Errorf("stack entry has neither %s nor %s tag", tagPending, tagRunning)
	}
}

// Stack is the ordered task collection of one namespace. Index 0 is the
// oldest ("last") entry, the final index is the next one to run.
type Stack struct {
	Entries []Entry
}

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

func (s *Stack) IsEmpty() bool {
	return s.Len() == 0
}

// PushNext adds a task so it runs before everything already queued.
func (s *Stack) PushNext(task Task) {
	s.Entries = append(s.Entries, Pending{Task: task})
}

// PushLast adds a task so it runs after everything already queued.
func (s *Stack) PushLast(task Task) {
	s.Entries = append([]Entry{Pending{Task: task}}, s.Entries...)
}

// PopNext removes and returns the next entry.
func (s *Stack) PopNext() (Entry, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	last := len(s.Entries) - 1
	entry := s.Entries[last]
	s.Entries = s.Entries[:last]
	return entry, true
}

// PopLast removes and returns the oldest entry.
func (s *Stack) PopLast() (Entry, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	entry := s.Entries[0]
	s.Entries = s.Entries[1:]
	return entry, true
}

// Contains reports whether any entry runs the same command in the same directory.
func (s *Stack) Contains(task Task) bool {
	if s == nil {
		return false
	}
	for _, entry := range s.Entries {
		if entry.EntryTask().SameCommand(task) {
			return true
		}
	}
	return false
}

// Position returns the 1-based list position of storage index idx; 1 is next.
func (s *Stack) Position(idx int) int {
	return s.Len() - idx
}

func (s Stack) MarshalJSON() ([]byte, error) {
	envelopes, err := s.envelopes()
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopes)
}

func (s *Stack) UnmarshalJSON(data []byte) error {
	var envelopes []entryEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}
	entries := make([]Entry, 0, len(envelopes))
	for idx, envelope := range envelopes {
		entry, err := envelope.entry()
		if err != nil {
			return fmt.Errorf("entry %d: %w", idx, err)
		}
		entries = append(entries, entry)
	}
	s.Entries = entries
	return nil
}

// MarshalYAML renders the same tagged shape as the JSON encoding.
func (s Stack) MarshalYAML() (interface{}, error) {
	return s.envelopes()
}

func (s Stack) envelopes() ([]entryEnvelope, error) {
	out := make([]entryEnvelope, 0, len(s.Entries))
	for _, entry := range s.Entries {
		envelope, err := envelopeFor(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, envelope)
	}
	return out, nil
}

// StatusKind is the outcome class of one run attempt.
type StatusKind int

const (
	StatusSkipped StatusKind = iota
	StatusSuccess
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Status is the per-RunID outcome of one `do` invocation. It is never persisted.
// A failed status has an exit code unless the child died from a signal or
// could not be started.
type Status struct {
	Kind     StatusKind
	ExitCode int
	HasCode  bool
}

func Skipped() Status { return Status{Kind: StatusSkipped} }

func Succeeded() Status { return Status{Kind: StatusSuccess, HasCode: true} }

func FailedWithCode(code int) Status {
	return Status{Kind: StatusFailed, ExitCode: code, HasCode: true}
}

func FailedWithoutCode() Status { return Status{Kind: StatusFailed} }

func (s Status) IsSuccess() bool { return s.Kind == StatusSuccess }

func (s Status) String() string {
	if s.Kind == StatusFailed {
		if s.HasCode {
			return fmt.Sprintf("failed (exit code %d)", s.ExitCode)
		}
		return "failed (no exit code)"
	}
	return s.Kind.String()
}
