//go:build ignore

// Cross-compiles the daemon for supported linux platforms: go run build.go -platforms linux-arm64
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

var availableTargets = []target{
	{goos: "linux", goarch: "arm", goarm: "6"},
	{goos: "linux", goarch: "arm", goarm: "7"},
	{goos: "linux", goarch: "arm64"}, // ARMv8
	{goos: "linux", goarch: "386"},
	{goos: "linux", goarch: "amd64"},
}

type target struct {
	goos   string
	goarch string
	goarm  string
}

func (t target) String() string {
	if t.goarm != "" {
		return fmt.Sprintf("%s-%s-v%s", t.goos, t.goarch, t.goarm)
	}
	return fmt.Sprintf("%s-%s", t.goos, t.goarch)
}

func (t target) env() []string {
	env := append(os.Environ(), "GOOS="+t.goos, "GOARCH="+t.goarch, "CGO_ENABLED=0")
	if t.goarm != "" {
		env = append(env, "GOARM="+t.goarm)
	}
	return env
}

type buildError struct {
	target         target
	stdout, stderr string
}

func (e buildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n>>> Failed build: project: %s, target: %s\n", project, e.target)
	if e.stdout != "" {
		fmt.Fprintf(&b, "======== STDOUT ========\n%s========================\n", e.stdout)
	}
	if e.stderr != "" {
		fmt.Fprintf(&b, "======== STDERR ========\n%s========================\n", e.stderr)
	}
	return b.String()
}

func build(t target) error {
	params := []string{"build", "-trimpath", "-o", filepath.Join(output, fmt.Sprintf("%s-%s", basename, t))}
	if race {
		params = append(params, "-race")
	}
	params = append(params, project)

	cmd := exec.Command("go", params...)
	cmd.Env = t.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return buildError{target: t, stdout: stdout.String(), stderr: stderr.String()}
	}
	return nil
}

func selectTargets(selection string) ([]target, error) {
	if selection == "all" {
		return availableTargets, nil
	}

	var selected []target
outer:
	for _, name := range strings.Split(selection, ",") {
		for _, t := range availableTargets {
			if t.String() == name {
				selected = append(selected, t)
				continue outer
			}
		}
		return nil, fmt.Errorf("target not found: %s", name)
	}
	return selected, nil
}

var selection, project, basename, output string
var race bool

func main() {
	var names []string
	for _, t := range availableTargets {
		names = append(names, t.String())
	}
	flag.StringVar(&selection, "platforms", "all", fmt.Sprintf(
		"comma-separated target platform list\navailable: %s", strings.Join(names, ",")),
	)
	flag.StringVar(&project, "project", "./cmd/padmacro/", "choose project directory")
	flag.StringVar(&basename, "base", "padmacro", "base filename for output binaries")
	flag.StringVar(&output, "output", "./builds", "output directory")
	flag.BoolVar(&race, "race", false, "include race detector")
	flag.Parse()

	log.SetFlags(log.Ltime)

	targets, err := selectTargets(selection)
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}

	log.Printf("engaging parallel building for %d targets", len(targets))

	var mutex sync.Mutex
	var errs error
	wg := sync.WaitGroup{}
	for _, t := range targets {
		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			log.Printf("building target %s          %s", project, t)
			err := build(t)
			if err != nil {
				log.Printf("building target %s failed:  %s", project, t)
			} else {
				log.Printf("building target %s success: %s", project, t)
			}
			mutex.Lock()
			errs = multierr.Append(errs, err)
			mutex.Unlock()
		}(t)
	}
	wg.Wait()

	if errs != nil {
		for _, err := range multierr.Errors(errs) {
			fmt.Print(err.Error())
		}
		os.Exit(1)
	}
}
