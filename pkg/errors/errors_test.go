package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")

	var nfe *NotFittedError
	if !As(err, &nfe) {
		t.Fatalf("expected NotFittedError in chain, got %T", err)
	}
	if nfe.ModelName != "RandomForestClassifier" || nfe.Method != "Predict" {
		t.Errorf("unexpected fields: %+v", nfe)
	}
	if !strings.Contains(err.Error(), "not fitted yet") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestDimensionError(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{"feature axis", 1, "features"},
		{"row axis", 0, "rows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("StandardScaler.Transform", 20, 19, tt.axis)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error() = %q, want substring %q", err.Error(), tt.want)
			}
			var de *DimensionError
			if !As(err, &de) {
				t.Fatalf("expected DimensionError in chain")
			}
			if de.Expected != 20 || de.Got != 19 {
				t.Errorf("unexpected fields: %+v", de)
			}
		})
	}
}

func TestColumnError(t *testing.T) {
	err := NewColumnError("dataset.Load", "y", []string{"f0", "f1"})
	if !strings.Contains(err.Error(), `column "y" not found`) {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestArtifactErrorUnwrap(t *testing.T) {
	cause := New("gob: type mismatch")
	err := NewArtifactError("inference.LoadBundle", "/tmp/model.gob", cause)
	if !Is(err, cause) {
		t.Error("expected Is to find the wrapped cause")
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err, "run")
		panic("boom")
	}

	err := run()
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	var pe *PanicError
	if !As(err, &pe) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if pe.Operation != "run" {
		t.Errorf("Operation = %q, want %q", pe.Operation, "run")
	}
	if pe.StackTrace == "" {
		t.Error("expected stack trace to be captured")
	}
}

func TestRecoverWrapsExistingError(t *testing.T) {
	base := New("already failed")
	run := func() (err error) {
		defer Recover(&err, "run")
		err = base
		panic("boom")
	}

	err := run()
	if err == nil {
		t.Fatal("expected error")
	}
	if !Is(err, base) {
		t.Error("expected original error preserved in chain")
	}
}
