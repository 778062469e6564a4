package intercept

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aishell/cli/cmd/aish/cli/router"
)

// fakeTranslator returns scripted suggestions keyed by input.
type fakeTranslator struct {
	suggestions map[string]string
	err         error
	delay       time.Duration
}

func (f *fakeTranslator) Suggest(ctx context.Context, input string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.suggestions[input], nil
}

func (f *fakeTranslator) Explain(context.Context, string) (string, error) {
	return "explanation", nil
}

func testRouter() *router.LocalRouter {
	r := router.NewLocalRouter()
	r.Register("help", "", func(context.Context, []string, func(router.Line)) error { return nil })
	return r
}

func TestClassify_DirectiveBeforeTranslation(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{suggestions: map[string]string{"/help": "never used"}}
	ic := New(tr, testRouter(), true, time.Second)

	d := ic.Classify("/help")
	if d.Kind != Directive || d.Name != "help" {
		t.Errorf("Classify(/help) = %+v, want Directive help", d)
	}
}

func TestClassify_CmdEscapeHatch(t *testing.T) {
	t.Parallel()

	ic := New(&fakeTranslator{}, nil, true, time.Second)
	d := ic.Classify("/cmd rm -rf build")
	if d.Kind != Passthrough || d.Original != "rm -rf build" {
		t.Errorf("Classify(/cmd ...) = %+v, want Passthrough of payload", d)
	}
}

func TestClassify_TranslationDisabled(t *testing.T) {
	t.Parallel()

	ic := New(&fakeTranslator{}, nil, false, time.Second)
	d := ic.Classify("list files")
	if d.Kind != Passthrough {
		t.Errorf("Classify with translation disabled = %+v, want Passthrough", d)
	}
}

func TestIntercept_SuggestionDiffersOpensConfirm(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{suggestions: map[string]string{"list files": "ls -la"}}
	ic := New(tr, nil, true, time.Second)

	out := ic.Intercept(context.Background(), "list files")
	if out.Kind != OutcomeConfirm {
		t.Fatalf("Kind = %v, want OutcomeConfirm", out.Kind)
	}
	if out.Command != "ls -la" || out.Original != "list files" {
		t.Errorf("got candidate %q / original %q", out.Command, out.Original)
	}
}

func TestIntercept_IdenticalSuggestionForwardsImmediately(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{suggestions: map[string]string{"ls -la": "  ls -la  "}}
	ic := New(tr, nil, true, time.Second)

	out := ic.Intercept(context.Background(), "ls -la")
	if out.Kind != OutcomeForward || out.Command != "ls -la" {
		t.Errorf("got %+v, want forward of original", out)
	}
}

func TestIntercept_NoSuggestionForwards(t *testing.T) {
	t.Parallel()

	ic := New(&fakeTranslator{}, nil, true, time.Second)
	out := ic.Intercept(context.Background(), "git status")
	if out.Kind != OutcomeForward || out.Command != "git status" {
		t.Errorf("got %+v, want forward of original", out)
	}
}

func TestIntercept_CollaboratorErrorFailsOpen(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{err: errors.New("connection refused")}
	ic := New(tr, nil, true, time.Second)

	out := ic.Intercept(context.Background(), "list files")
	if out.Kind != OutcomeForward || out.Command != "list files" {
		t.Errorf("got %+v, want forward of original on collaborator failure", out)
	}
}

func TestIntercept_TimeoutTreatedAsNoSuggestion(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{
		suggestions: map[string]string{"list files": "ls -la"},
		delay:       200 * time.Millisecond,
	}
	ic := New(tr, nil, true, 10*time.Millisecond)

	out := ic.Intercept(context.Background(), "list files")
	if out.Kind != OutcomeForward || out.Command != "list files" {
		t.Errorf("got %+v, want forward of original on timeout", out)
	}
}

func TestIntercept_UnknownDirectiveIsNotice(t *testing.T) {
	t.Parallel()

	ic := New(&fakeTranslator{}, testRouter(), true, time.Second)
	out := ic.Intercept(context.Background(), "/frobnicate now")
	if out.Kind != OutcomeNotice || !out.IsErr {
		t.Errorf("got %+v, want error notice", out)
	}
}

func TestClassify_AbsolutePathIsNotADirective(t *testing.T) {
	t.Parallel()

	ic := New(nil, testRouter(), false, time.Second)
	d := ic.Classify("/usr/bin/ls -la")
	if d.Kind != Passthrough || d.Original != "/usr/bin/ls -la" {
		t.Errorf("Classify(/usr/bin/ls -la) = %+v, want Passthrough", d)
	}
}

func TestIntercept_ForcedTranslationWithoutSuggestion(t *testing.T) {
	t.Parallel()

	ic := New(&fakeTranslator{}, nil, true, time.Second)
	out := ic.Intercept(context.Background(), "/ai do something impossible")
	if out.Kind != OutcomeNotice || out.IsErr {
		t.Errorf("got %+v, want non-error notice", out)
	}
}

func TestIntercept_BareDecisionDirectivesShowUsage(t *testing.T) {
	t.Parallel()

	ic := New(&fakeTranslator{}, nil, true, time.Second)

	for _, line := range []string{"/cmd", "/ai"} {
		out := ic.Intercept(context.Background(), line)
		if out.Kind != OutcomeNotice || !out.IsErr {
			t.Errorf("Intercept(%q) = %+v, want usage notice", line, out)
		}
	}
}

func TestIntercept_ForcedTranslationWorksWhenDisabled(t *testing.T) {
	t.Parallel()

	tr := &fakeTranslator{suggestions: map[string]string{"list files": "ls"}}
	ic := New(tr, nil, false, time.Second)

	out := ic.Intercept(context.Background(), "/ai list files")
	if out.Kind != OutcomeConfirm || out.Command != "ls" {
		t.Errorf("got %+v, want confirm with candidate ls", out)
	}
}
