package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := ConfigError("invalid configuration").
			WithContext("file", "assetbuilder.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Error() != "[config] invalid configuration" {
			t.Errorf("unexpected message %q", err.Error())
		}

		file, exists := err.Context().String("file")
		if !exists || file != "assetbuilder.yaml" {
			t.Errorf("expected context file=assetbuilder.yaml, got %v", file)
		}
	})

	t.Run("Category through wrapping", func(t *testing.T) {
		err := fmt.Errorf("stage failed: %w", CompileError("bad scss").Build())

		if _, ok := AsClassified(err); !ok {
			t.Error("expected wrapped error to be classified")
		}
		if GetCategory(err) != CategoryCompile {
			t.Errorf("expected compile category, got %s", GetCategory(err))
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to be internal")
		}
	})

	t.Run("Category lookup through joined errors", func(t *testing.T) {
		joined := errors.Join(
			RenderError("missing include").Build(),
			LintError("2 problems").Build(),
		)
		run := WrapError(joined, CategoryRun, "2 stage(s) failed").Build()

		for _, c := range []ErrorCategory{CategoryRun, CategoryLint, CategoryRender} {
			if !HasCategory(run, c) {
				t.Errorf("expected run error to contain %s", c)
			}
		}
		if HasCategory(run, CategoryBundle) {
			t.Error("did not expect bundle category")
		}
		if HasCategory(nil, CategoryRun) {
			t.Error("nil has no category")
		}
	})

	t.Run("Is matches category and message", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", LintError("failed").WithContext("errors", 2).Build())
		if !errors.Is(err, LintError("failed").Build()) {
			t.Error("expected match on category and message")
		}
		if errors.Is(err, BuildError("failed").Build()) {
			t.Error("did not expect match across categories")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrap keeps cause", func(t *testing.T) {
		originalErr := errors.New("unexpected token")
		err := WrapError(originalErr, CategoryBundle, "transpile failed").
			Warning().
			WithContext("file", "a.js").
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Error() != "[bundle] transpile failed: unexpected token" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("Built errors do not share context", func(t *testing.T) {
		b := CompileError("bad scss").WithContext("file", "a.scss")
		first := b.Build()
		second := b.WithContext("file", "b.scss").Build()

		if f, _ := first.Context().String("file"); f != "a.scss" {
			t.Errorf("first error changed after build: %s", f)
		}
		if f, _ := second.Context().String("file"); f != "b.scss" {
			t.Errorf("expected b.scss, got %s", f)
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"CompileError", CompileError("test"), CategoryCompile, SeverityError},
			{"RenderError", RenderError("test"), CategoryRender, SeverityError},
			{"LintError", LintError("test"), CategoryLint, SeverityError},
			{"BuildError", BuildError("test"), CategoryBundle, SeverityError},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError},
			{"ServerError", ServerError("test"), CategoryServer, SeverityFatal},
			{"WatchError", WatchError("test"), CategoryWatch, SeverityFatal},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})
}

func TestLogAttrs(t *testing.T) {
	err := RenderError("template failed").
		WithContext("stage", "template").
		WithContext("file", "index.pug").
		Build()

	attrs := err.LogAttrs()
	want := []slog.Attr{
		slog.String("category", "render"),
		slog.Any("file", "index.pug"),
		slog.Any("stage", "template"),
	}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attrs, got %d", len(want), len(attrs))
	}
	for i := range want {
		if !attrs[i].Equal(want[i]) {
			t.Errorf("attr %d = %v, want %v", i, attrs[i], want[i])
		}
	}
}

func TestStageFailureCategories(t *testing.T) {
	for _, c := range []ErrorCategory{CategoryCompile, CategoryRender, CategoryLint, CategoryBundle, CategoryRun} {
		if !c.IsStageFailure() {
			t.Errorf("%s should be a stage failure", c)
		}
	}
	if CategoryConfig.IsStageFailure() {
		t.Error("config is not a stage failure")
	}
}
