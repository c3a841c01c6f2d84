package handlers

import (
	"reflect"
	"runtime"
	"testing"
)

// ok fails the test if err is not nil.
func ok(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d: unexpected error: %s", file, line, err.Error())
	}
}

// equals fails the test if got is not equal to want.
func equals(tb testing.TB, got, want interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(got, want) {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d: got %#v, want %#v", file, line, got, want)
	}
}

func notEquals(tb testing.TB, got, unwanted interface{}) {
	tb.Helper()
	if reflect.DeepEqual(got, unwanted) {
		_, file, line, _ := runtime.Caller(1)
		tb.Fatalf("%s:%d: got unwanted %#v", file, line, got)
	}
}
