package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil error": {
			err:      nil,
			wantCode: SuccessCode,
			wantLog:  "",
		},
		"registered error": {
			err:      ErrNotFound,
			wantCode: ErrNotFound.code,
			wantLog:  "not found",
		},
		"wrapped reason keeps its own code": {
			err:      Wrap(errTestReason, "tx 3"),
			wantCode: errTestReason.code,
			wantLog:  "tx 3: test reason",
		},
		"stdlib error is redacted": {
			err:      fmt.Errorf("cannot open file"),
			wantCode: internalCode,
			wantLog:  internalLog,
		},
		"panic is redacted": {
			err:      Wrap(ErrPanic, "secret"),
			wantCode: internalCode,
			wantLog:  internalLog,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := Info(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestInfoDebugShowsInternal(t *testing.T) {
	_, log := Info(fmt.Errorf("cannot open file"), true)
	if !strings.Contains(log, "cannot open file") {
		t.Fatalf("debug log must contain the message, got %q", log)
	}
}

func TestFromCode(t *testing.T) {
	code, log := Info(Wrap(errTestReason, "tx 3"), false)
	err := FromCode(code, log)
	if !errTestReason.Is(err) {
		t.Fatalf("want test reason, got %+v", err)
	}
	if err.Error() != "tx 3: test reason" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if err := FromCode(ErrNotFound.Code(), "not found"); err != ErrNotFound {
		t.Fatalf("want not found, got %+v", err)
	}
	if err := FromCode(SuccessCode, ""); err != nil {
		t.Fatalf("want no error, got %+v", err)
	}
	if err := FromCode(424242, "boom"); errCode(err) != internalCode {
		t.Fatalf("unknown code must be internal, got %+v", err)
	}
}
