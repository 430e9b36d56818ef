package errdefs

import (
	"errors"
	"fmt"
	"testing"
)

func TestStageErrorUnwrapsToSentinel(t *testing.T) {
	err := AtStage(StageAggregate, InvalidParameter("block size %d", 0))

	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if errors.Is(err, ErrFormat) {
		t.Fatal("did not expect ErrFormat")
	}

	stage, ok := StageOf(err)
	if !ok || stage != StageAggregate {
		t.Fatalf("expected stage %q, got %q (ok=%v)", StageAggregate, stage, ok)
	}

	want := "aggregate: invalid parameter: block size 0"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestAtStageNil(t *testing.T) {
	if AtStage(StageLoad, nil) != nil {
		t.Fatal("expected nil")
	}
}

func TestStageOfSurvivesFurtherWrapping(t *testing.T) {
	base := AtStage(StageLoad, NotFound("missing %s", "a_b.nc"))
	wrapped := fmt.Errorf("pair a_b: %w", base)

	stage, ok := StageOf(wrapped)
	if !ok || stage != StageLoad {
		t.Fatalf("expected load stage, got %q", stage)
	}
	if !errors.Is(wrapped, ErrDataNotFound) {
		t.Fatal("expected ErrDataNotFound")
	}
}

func TestStageOfPlainError(t *testing.T) {
	if _, ok := StageOf(errors.New("plain")); ok {
		t.Fatal("plain errors carry no stage")
	}
}
