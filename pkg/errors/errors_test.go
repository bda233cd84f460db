package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCycleErrorString(t *testing.T) {
	err := &CycleError{
		Op:   "engine.Tick",
		Kind: KindUnknownWidget,
		Err:  &UnknownWidgetError{Name: "Slider"},
	}
	got := err.Error()
	want := "engine.Tick [unknown_widget]: widget not found: Slider"
	if got != want {
		t.Errorf("CycleError.Error() = %q, want %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindUnknownWidget, "unknown_widget"},
		{KindMount, "mount"},
		{KindRender, "render"},
		{KindPatch, "patch"},
		{KindStaleUpdate, "stale_update"},
		{KindPanic, "panic"},
		{KindConfig, "config"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", fmt.Errorf("boom"), KindUnknown},
		{"unknown widget", &UnknownWidgetError{Name: "X"}, KindUnknownWidget},
		{"wrapped unknown widget", fmt.Errorf("cycle: %w", &UnknownWidgetError{Name: "X"}), KindUnknownWidget},
		{"stale", &StaleUpdateError{Op: "add", Path: []int{3}}, KindStaleUpdate},
		{"render", &RenderError{Component: "*app.Timer", Recovered: "x"}, KindRender},
		{"mount", &MountHookError{Component: "*app.Timer", Err: fmt.Errorf("x")}, KindMount},
		{"cycle", &CycleError{Kind: KindPatch, Err: fmt.Errorf("x")}, KindPatch},
		{"config", &ConfigError{Key: "engine.interval", Err: fmt.Errorf("x")}, KindConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCycleError_UnwrapsToTypedError(t *testing.T) {
	err := &CycleError{Op: "engine.Start", Err: &UnknownWidgetError{Name: "Slider"}}
	var unknown *UnknownWidgetError
	if !stderrors.As(err, &unknown) {
		t.Fatal("expected errors.As to find UnknownWidgetError")
	}
	if unknown.Name != "Slider" {
		t.Errorf("Name = %q, want Slider", unknown.Name)
	}
}

func TestConfigErrorString(t *testing.T) {
	err := &ConfigError{Key: "log.level", Err: fmt.Errorf("unknown log level %q", "loud")}
	if got, want := err.Error(), `log.level: unknown log level "loud"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	err.Path = "flywire.yaml"
	if got, want := err.Error(), `flywire.yaml: log.level: unknown log level "loud"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic"}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "host.Timers.Step"
	if got, want := err.Error(), "panic in host.Timers.Step: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestMountHookErrorString(t *testing.T) {
	err := &MountHookError{Component: "*demo.Timer", Recovered: "nil map"}
	if got, want := err.Error(), "panic in *demo.Timer.OnMount(): nil map"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	cause := fmt.Errorf("no scheduler")
	err = &MountHookError{Component: "*demo.Timer", Err: cause}
	if !stderrors.Is(err, cause) {
		t.Error("expected MountHookError to unwrap to its cause")
	}
}

func TestRenderErrorString(t *testing.T) {
	tests := []struct {
		err  *RenderError
		want string
	}{
		{&RenderError{Component: "*demo.Counter", Recovered: "index out of range"}, "panic in *demo.Counter.Render(): index out of range"},
		{&RenderError{Component: "*demo.Counter", Err: fmt.Errorf("too deep")}, "error in *demo.Counter.Render(): too deep"},
		{&RenderError{Component: "*demo.Counter"}, "unknown error in *demo.Counter.Render()"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("RenderError.Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestReport_UsesExplicitHandler(t *testing.T) {
	var captured *CycleError
	handler := &testHandler{onError: func(err *CycleError) { captured = err }}

	Report(handler, &CycleError{Op: "test.op", Kind: KindRender, Err: fmt.Errorf("x")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReport_FallsBackToGlobalHandler(t *testing.T) {
	var captured *MountHookError
	handler := &testHandler{onMount: func(err *MountHookError) { captured = err }}

	SetHandler(handler)
	defer SetHandler(nil)

	ReportMountError(nil, &MountHookError{Component: "c", Err: fmt.Errorf("x")})

	if captured == nil {
		t.Fatal("expected mount error to reach the global handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	func() {
		defer Recover(handler, "test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	var got any
	func() {
		defer RecoverWithCallback(&testHandler{}, "test.cb", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback got %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := Handler(nil).(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", Handler(nil))
	}
}

func TestLogHandler_WritesRecords(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil)), Verbose: true}

	h.HandleMountError(&MountHookError{Component: "*demo.Timer", Recovered: "boom", StackTrace: "frame"})
	h.HandleError(&CycleError{Op: "engine.Tick", Kind: KindUnknownWidget, Err: &UnknownWidgetError{Name: "Slider"}, Timestamp: time.Now()})

	out := buf.String()
	for _, want := range []string{"mount hook failed", "*demo.Timer", "stack=frame", "reconcile failed", "kind=unknown_widget"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q should contain %q", out, want)
		}
	}
}

type testHandler struct {
	onError func(*CycleError)
	onPanic func(*PanicError)
	onMount func(*MountHookError)
}

func (h *testHandler) HandleError(err *CycleError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleMountError(err *MountHookError) {
	if h.onMount != nil {
		h.onMount(err)
	}
}
