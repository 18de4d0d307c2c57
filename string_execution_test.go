package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestStringOutput(t *testing.T) {
	output, err := runProgram(t, `use io
start main
    out | "line one\n"
    out | "say \"hi\""
end`, "")
	be.Err(t, err, nil)
	be.Equal(t, output, "line one\nsay \"hi\"")
}

func TestStringVariables(t *testing.T) {
	output, err := runProgram(t, `use io
start main
    s is str
    s = "hello"
    if s == "hello"
        out | s
    end
end`, "")
	be.Err(t, err, nil)
	be.Equal(t, output, "hello")
}

func TestStringLibrary(t *testing.T) {
	output, err := runProgram(t, `use io
use strings
start main
    s is str
    s = concat | "ab", "cd"
    out | upper | s
    out | len | s
    out | (repeat | "-", 3)
    out | tostr | 2.5
    out | (toint | "41") + 1
end`, "")
	be.Err(t, err, nil)
	be.Equal(t, output, "ABCD4---2.542")
}

func TestStringConcatenationNeedsLibrary(t *testing.T) {
	_, err := runProgram(t, `start main
    s is str
    s = "a" + "b"
end`, "")
	be.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestStringLibraryError(t *testing.T) {
	_, err := runProgram(t, `use strings
start main
    n is int
    n = toint | "forty"
end`, "")
	be.True(t, errors.Is(err, ErrNative))
}
