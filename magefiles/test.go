//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests with the race detector on.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Writes a coverage profile to cover.out.
func (Test) Cover() error {
	if _, err := executeCmd("go", withArgs("test", "-coverprofile=cover.out", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
