package textflow

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// Test commands.

func appendCommand() *Command {
	return &Command{
		Name: "append",
		Args: []ArgSpec{{Name: "text", Type: "string"}},
		Validators: []Validator{{
			Test:    func(inv *Invocation) bool { return inv.HasValue("text") },
			Message: "text is required",
		}},
		Run: func(_ context.Context, w *WorkingData, inv *Invocation, _ *Pipeline) (Result, error) {
			return ReplaceText(w.Text + inv.ArgOr("", "text")), nil
		},
	}
}

func failCommand(err error) *Command {
	return &Command{
		Name: "fail",
		Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) {
			return nil, err
		},
	}
}

func panicCommand() *Command {
	return &Command{
		Name: "explode",
		Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) {
			panic("boom")
		},
	}
}

func abortCommand() *Command {
	return &Command{
		Name: "halt",
		Run: func(_ context.Context, w *WorkingData, _ *Invocation, _ *Pipeline) (Result, error) {
			next := NewWorkingData("partial", "", "")
			next.Abort()
			return Replace(next), nil
		},
	}
}

func newTestRegistry(t *testing.T, cmds ...*Command) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(cmds...); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg
}

// fixedClock advances by step on every call.
func fixedClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestExecute_AppendCommand(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, appendCommand())
	got := ExecutePipeline(context.Background(), reg, "hi", "", "",
		[]Invocation{NewInvocation("append", "text", "!")},
		WithClock(fixedClock(time.Millisecond)))

	if got.Text != "hi!" {
		t.Errorf("Text = %q, want %q", got.Text, "hi!")
	}
	if len(got.History.Entries) != 1 {
		t.Fatalf("len(History.Entries) = %d, want 1", len(got.History.Entries))
	}
	entry := got.History.Entries[0]
	if entry.Input != "hi" || entry.Output != "hi!" {
		t.Errorf("entry = {%q -> %q}, want {%q -> %q}", entry.Input, entry.Output, "hi", "hi!")
	}
	if entry.Delta != 1 {
		t.Errorf("entry.Delta = %d, want 1", entry.Delta)
	}
	if entry.Duration != time.Millisecond {
		t.Errorf("entry.Duration = %v, want %v", entry.Duration, time.Millisecond)
	}
	if got.History.Input != "hi" {
		t.Errorf("History.Input = %q, want %q", got.History.Input, "hi")
	}
	if got.History.Duration <= 0 {
		t.Errorf("History.Duration = %v, want > 0", got.History.Duration)
	}
}

func TestExecute_UnknownCommandSkipped(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, appendCommand())
	got := ExecutePipeline(context.Background(), reg, "x", "", "", []Invocation{
		{Name: "unknown-cmd"},
		NewInvocation("append", "text", "y"),
	})

	if got.Text != "xy" {
		t.Errorf("Text = %q, want %q", got.Text, "xy")
	}
	if len(got.History.Entries) != 1 {
		t.Errorf("len(History.Entries) = %d, want 1", len(got.History.Entries))
	}
}

func TestExecute_FailuresReturnEmptyDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		commands []Invocation
	}{
		{"command error", []Invocation{NewInvocation("append", "text", "a"), {Name: "fail"}}},
		{"command panic", []Invocation{{Name: "explode"}}},
		{"abort via full replacement", []Invocation{{Name: "halt"}, NewInvocation("append", "text", "z")}},
		{"validator failure", []Invocation{NewInvocation("append", "text", "a"), {Name: "append"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := newTestRegistry(t, appendCommand(), failCommand(errors.New("nope")), panicCommand(), abortCommand())
			got := ExecutePipeline(context.Background(), reg, "input", "text/plain", "src", tt.commands)

			if got.Text != "" {
				t.Errorf("Text = %q, want empty", got.Text)
			}
			if got.ContentType != "" || got.Source != "" {
				t.Errorf("ContentType, Source = %q, %q, want empty", got.ContentType, got.Source)
			}
			if len(got.History.Entries) != 0 {
				t.Errorf("len(History.Entries) = %d, want 0", len(got.History.Entries))
			}
		})
	}
}

func TestExecute_ValidatorFailureSkipsReturningData(t *testing.T) {
	t.Parallel()

	var returning int
	reg := newTestRegistry(t, appendCommand())
	got := ExecutePipeline(context.Background(), reg, "x", "", "",
		[]Invocation{{Name: "append"}},
		WithObservers(Hooks{OnReturningData: func(*Signal) bool { returning++; return true }}))

	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
	if returning != 0 {
		t.Errorf("returning-data signals = %d, want 0", returning)
	}
}

func TestExecute_CommandErrorSkipsFinishedSignal(t *testing.T) {
	t.Parallel()

	var events []Event
	record := ObserverFunc(func(s *Signal) bool {
		events = append(events, s.Event)
		return true
	})

	reg := newTestRegistry(t, failCommand(errors.New("nope")))
	ExecutePipeline(context.Background(), reg, "x", "", "", []Invocation{{Name: "fail"}}, WithObservers(record))

	want := []Event{EventPipelineCreated, EventPipelineStarting, EventCommandStarting}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestExecute_SignalOrder(t *testing.T) {
	t.Parallel()

	var events []Event
	record := ObserverFunc(func(s *Signal) bool {
		events = append(events, s.Event)
		return true
	})

	reg := newTestRegistry(t, appendCommand())
	ExecutePipeline(context.Background(), reg, "x", "", "",
		[]Invocation{NewInvocation("append", "text", "1"), NewInvocation("append", "text", "2")},
		WithObservers(record))

	want := []Event{
		EventPipelineCreated,
		EventPipelineStarting,
		EventCommandStarting, EventCommandFinished,
		EventCommandStarting, EventCommandFinished,
		EventPipelineFinished,
		EventReturningData,
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestExecute_Vetoes(t *testing.T) {
	t.Parallel()

	t.Run("pipeline starting returns input untouched", func(t *testing.T) {
		t.Parallel()

		reg := newTestRegistry(t, appendCommand())
		got := ExecutePipeline(context.Background(), reg, "x", "", "",
			[]Invocation{NewInvocation("append", "text", "!")},
			WithObservers(Hooks{OnPipelineStarting: func(*Signal) bool { return false }}))

		if got.Text != "x" {
			t.Errorf("Text = %q, want %q", got.Text, "x")
		}
		if len(got.History.Entries) != 0 {
			t.Errorf("len(History.Entries) = %d, want 0", len(got.History.Entries))
		}
	})

	t.Run("command starting skips that command", func(t *testing.T) {
		t.Parallel()

		veto := Hooks{OnCommandStarting: func(s *Signal) bool {
			return s.Command.ArgOr("", "text") != "skip"
		}}
		reg := newTestRegistry(t, appendCommand())
		got := ExecutePipeline(context.Background(), reg, "a", "", "", []Invocation{
			NewInvocation("append", "text", "skip"),
			NewInvocation("append", "text", "b"),
		}, WithObservers(veto))

		if got.Text != "ab" {
			t.Errorf("Text = %q, want %q", got.Text, "ab")
		}
		if len(got.History.Entries) != 1 {
			t.Errorf("len(History.Entries) = %d, want 1", len(got.History.Entries))
		}
	})

	t.Run("returning data yields empty document", func(t *testing.T) {
		t.Parallel()

		reg := newTestRegistry(t, appendCommand())
		got := ExecutePipeline(context.Background(), reg, "a", "", "",
			[]Invocation{NewInvocation("append", "text", "b")},
			WithObservers(Hooks{OnReturningData: func(*Signal) bool { return false }}))

		if got.Text != "" {
			t.Errorf("Text = %q, want empty", got.Text)
		}
	})

	t.Run("every observer sees a vetoed signal", func(t *testing.T) {
		t.Parallel()

		var seen int
		counter := ObserverFunc(func(s *Signal) bool {
			if s.Event == EventPipelineStarting {
				seen++
			}
			return true
		})
		veto := Hooks{OnPipelineStarting: func(*Signal) bool { return false }}

		reg := newTestRegistry(t, appendCommand())
		ExecutePipeline(context.Background(), reg, "a", "", "", nil, WithObservers(veto, counter))

		if seen != 1 {
			t.Errorf("second observer saw %d pipeline-starting signals, want 1", seen)
		}
	})
}

func TestExecute_ObserverAbortAfterCommand(t *testing.T) {
	t.Parallel()

	abortAfter := Hooks{OnCommandFinished: func(s *Signal) { s.Working.Abort() }}
	reg := newTestRegistry(t, appendCommand())
	got := ExecutePipeline(context.Background(), reg, "a", "", "",
		[]Invocation{NewInvocation("append", "text", "b")},
		WithObservers(abortAfter))

	if got.Text != "" || len(got.History.Entries) != 0 {
		t.Errorf("got {%q, %d entries}, want empty document", got.Text, len(got.History.Entries))
	}
}

func TestExecute_HeadAndTailOrder(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, appendCommand())
	p := NewPipeline(reg, []Invocation{NewInvocation("append", "text", "M")},
		WithHeadCommands(NewInvocation("append", "text", "H")),
		WithTailCommands(NewInvocation("append", "text", "T")))

	first := p.Execute(context.Background(), NewWorkingData("", "", ""))
	if first.Text != "HMT" {
		t.Errorf("first run Text = %q, want %q", first.Text, "HMT")
	}

	second := p.Execute(context.Background(), NewWorkingData("", "", ""))
	if second.Text != "HM" {
		t.Errorf("second run Text = %q, want %q (tail cleared)", second.Text, "HM")
	}
}

func TestExecute_AbortIsFinalEvenWithTail(t *testing.T) {
	t.Parallel()

	ran := false
	tailCmd := &Command{
		Name: "mark",
		Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) {
			ran = true
			return nil, nil
		},
	}
	reg := newTestRegistry(t, abortCommand(), tailCmd)
	got := ExecutePipeline(context.Background(), reg, "x", "", "",
		[]Invocation{{Name: "halt"}},
		WithTailCommands(Invocation{Name: "mark"}))

	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
	if ran {
		t.Error("tail command ran after abort")
	}
}

func TestExecute_ResultMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result Result
		want   WorkingData
	}{
		{
			name:   "nil result keeps document",
			result: nil,
			want:   WorkingData{Text: "t", ContentType: "text/plain", Source: "s", Container: Container{Width: "10px"}},
		},
		{
			name:   "text replacement",
			result: ReplaceText("new"),
			want:   WorkingData{Text: "new", ContentType: "text/plain", Source: "s", Container: Container{Width: "10px"}},
		},
		{
			name: "partial patch merges container",
			result: PartialPatch{
				ContentType: StringPtr("text/html"),
				Container:   &Container{Height: "5px"},
			},
			want: WorkingData{Text: "t", ContentType: "text/html", Source: "s", Container: Container{Width: "10px", Height: "5px"}},
		},
		{
			name: "full replacement",
			result: Replace(&WorkingData{
				Text: "whole", ContentType: "application/json", Source: "u",
				Container: Container{MinHeight: "1px"},
			}),
			want: WorkingData{Text: "whole", ContentType: "application/json", Source: "u", Container: Container{MinHeight: "1px"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := tt.result
			cmd := &Command{
				Name: "step",
				Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) {
					return res, nil
				},
			}
			reg := newTestRegistry(t, cmd)
			w := NewWorkingData("t", "text/plain", "s")
			w.Container.Width = "10px"

			got := NewPipeline(reg, []Invocation{{Name: "step"}}).Execute(context.Background(), w)

			if got.Text != tt.want.Text || got.ContentType != tt.want.ContentType || got.Source != tt.want.Source {
				t.Errorf("got {%q, %q, %q}, want {%q, %q, %q}",
					got.Text, got.ContentType, got.Source, tt.want.Text, tt.want.ContentType, tt.want.Source)
			}
			if got.Container != tt.want.Container {
				t.Errorf("Container = %+v, want %+v", got.Container, tt.want.Container)
			}
			if len(got.History.Entries) != 1 {
				t.Errorf("len(History.Entries) = %d, want 1", len(got.History.Entries))
			}
		})
	}
}

func TestExecute_CancelledContextAborts(t *testing.T) {
	t.Parallel()

	waiter := &Command{
		Name: "wait",
		Run: func(ctx context.Context, w *WorkingData, _ *Invocation, _ *Pipeline) (Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	reg := newTestRegistry(t, waiter)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := ExecutePipeline(ctx, reg, "x", "", "", []Invocation{{Name: "wait"}})
	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
}

func TestExecute_InstanceCommandsWin(t *testing.T) {
	t.Parallel()

	shadow := &Command{
		Name: "append",
		Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) {
			return ReplaceText("instance"), nil
		},
	}
	registerOnCreate := Hooks{OnPipelineCreated: func(s *Signal) {
		if err := s.Pipeline.Register(shadow); err != nil {
			t.Errorf("Register() error = %v", err)
		}
	}}

	reg := newTestRegistry(t, appendCommand())
	got := ExecutePipeline(context.Background(), reg, "x", "", "",
		[]Invocation{NewInvocation("append", "text", "!")},
		WithObservers(registerOnCreate))

	if got.Text != "instance" {
		t.Errorf("Text = %q, want %q", got.Text, "instance")
	}
}

func TestExecute_CommandSeesPipelineHandle(t *testing.T) {
	t.Parallel()

	queueTail := &Command{
		Name: "queue",
		Run: func(_ context.Context, _ *WorkingData, _ *Invocation, p *Pipeline) (Result, error) {
			p.AddTail(NewInvocation("append", "text", "?"))
			return nil, nil
		},
	}
	reg := newTestRegistry(t, appendCommand(), queueTail)
	p := NewPipeline(reg, []Invocation{{Name: "queue"}})

	first := p.Execute(context.Background(), NewWorkingData("a", "", ""))
	if first.Text != "a" {
		t.Errorf("first run Text = %q, want %q", first.Text, "a")
	}
	second := p.Execute(context.Background(), NewWorkingData("a", "", ""))
	if second.Text != "a" {
		t.Errorf("second run Text = %q, want %q", second.Text, "a")
	}
}

func TestNewPipeline_SetDebugFiltered(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t, appendCommand())
	p := NewPipeline(reg, []Invocation{
		{Name: SetDebugCommand},
		NewInvocation("append", "text", "!"),
	})

	if !p.Debug() {
		t.Error("Debug() = false, want true")
	}
	cmds := p.Commands()
	if len(cmds) != 1 || cmds[0].Name != "append" {
		t.Errorf("Commands() = %v, want only append", cmds)
	}
}

func TestExecute_DoesNotMutateInvocations(t *testing.T) {
	t.Parallel()

	cmds := []Invocation{NewInvocation("append", "text", "!")}
	snapshot := []Invocation{cmds[0].clone()}

	reg := newTestRegistry(t, appendCommand())
	ExecutePipeline(context.Background(), reg, "x", "", "", cmds)

	if !reflect.DeepEqual(cmds, snapshot) {
		t.Errorf("invocations changed: %v, want %v", cmds, snapshot)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	strict := &Command{
		Name:                  "strict",
		Args:                  []ArgSpec{{Name: "selector"}, {Name: "header_*"}},
		DisallowFreeArguments: true,
		Validators: []Validator{
			{Test: func(inv *Invocation) bool { return inv.HasValue("selector") }, Message: "selector is required"},
			{Test: func(inv *Invocation) bool { return !inv.HasValue("bad") }, Message: "bad must be empty"},
		},
		Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) { return nil, nil },
	}

	tests := []struct {
		name     string
		commands []Invocation
		want     []string
	}{
		{
			name:     "valid",
			commands: []Invocation{NewInvocation("strict", "selector", "p", "header_x", "1")},
			want:     nil,
		},
		{
			name:     "unknown command",
			commands: []Invocation{{Name: "nope"}},
			want:     []string{`Unknown command: "nope"`},
		},
		{
			name:     "all validators and free arguments",
			commands: []Invocation{NewInvocation("strict", "bad", "1")},
			want: []string{
				`Command "strict": selector is required`,
				`Command "strict": bad must be empty`,
				`Command "strict": unknown argument "bad"`,
			},
		},
		{
			name: "errors across commands",
			commands: []Invocation{
				{Name: "a"},
				NewInvocation("strict", "selector", "x", "extra", "1"),
			},
			want: []string{
				`Unknown command: "a"`,
				`Command "strict": unknown argument "extra"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := newTestRegistry(t, strict)
			p := NewPipeline(reg, tt.commands)
			got := p.Validate()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
			if again := p.Validate(); !reflect.DeepEqual(again, got) {
				t.Errorf("second Validate() = %q, want %q", again, got)
			}
		})
	}
}

func TestValidateCommands_NoSideEffects(t *testing.T) {
	t.Parallel()

	ran := false
	cmd := &Command{
		Name: "side",
		Run: func(context.Context, *WorkingData, *Invocation, *Pipeline) (Result, error) {
			ran = true
			return nil, nil
		},
	}
	reg := newTestRegistry(t, cmd)
	if errs := ValidateCommands(reg, []Invocation{{Name: "side"}}); len(errs) != 0 {
		t.Errorf("ValidateCommands() = %q, want none", errs)
	}
	if ran {
		t.Error("ValidateCommands() executed a command")
	}
}

func TestInvoke_WrapsErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	reg := newTestRegistry(t, failCommand(cause))
	p := NewPipeline(reg, nil)
	cmd, _ := reg.Lookup("fail")

	_, err := p.invoke(context.Background(), cmd, NewWorkingData("", "", ""), &Invocation{Name: "fail"})
	if !errors.Is(err, ErrCommandFailed) || !errors.Is(err, cause) {
		t.Errorf("invoke() error = %v, want ErrCommandFailed wrapping %v", err, cause)
	}

	_, err = p.invoke(context.Background(), panicCommand(), NewWorkingData("", "", ""), &Invocation{Name: "explode"})
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(err.Error(), "boom") {
		t.Errorf("invoke() panic error = %v, want ErrCommandFailed mentioning boom", err)
	}
}
