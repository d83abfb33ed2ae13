// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/tfboot/tfboot/internal/log"
	"github.com/tfboot/tfboot/internal/stack"
)

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#d9534f")).Render("✗")
)

// Pair binds a Terraform resource address to the cloud identifier it is
// imported from.
type Pair struct {
	Address string
	ID      string
}

// Result is the outcome of one import attempt.
type Result struct {
	Pair    Pair
	Skipped bool
	Err     error
}

// Importer drives import runs for the state resources of one stack against
// the Terraform configuration in rootDir.
type Importer struct {
	st      *stack.Stack
	rootDir string
	binary  string
	out     io.Writer
}

// New returns an Importer for the stack's resources. Preflight must pass
// before Run.
func New(st *stack.Stack, rootDir string, out io.Writer) *Importer {
	return &Importer{
		st:      st,
		rootDir: rootDir,
		out:     out,
	}
}

// Check is one preflight probe.
type Check struct {
	Name string
	OK   bool
}

// Preflight verifies the tooling and root directory are ready for imports: a
// terraform or tofu binary on PATH, .tf configuration present, and an
// initialized .terraform directory. It prints one status line per probe.
func (im *Importer) Preflight() bool {
	for _, candidate := range []string{"terraform", "tofu"} {
		if _, err := exec.LookPath(candidate); err == nil {
			im.binary = candidate
			break
		}
	}

	tfFiles, _ := filepath.Glob(filepath.Join(im.rootDir, "*.tf"))
	dotTF, err := os.Stat(filepath.Join(im.rootDir, ".terraform"))
	initialized := err == nil && dotTF.IsDir()

	checks := []Check{
		{Name: "terraform or tofu on PATH", OK: im.binary != ""},
		{Name: "terraform configuration in " + im.rootDir, OK: len(tfFiles) > 0},
		{Name: "initialized .terraform directory", OK: initialized},
	}

	ok := true
	for _, c := range checks {
		mark := okMark
		if !c.OK {
			mark = failMark
			ok = false
		}
		fmt.Fprintf(im.out, "%s %s\n", mark, c.Name)
	}
	return ok
}

// Run executes one import per pair, skipping addresses already tracked in
// the local state. With dryRun it prints the commands instead of running
// them. Outcomes are reported per pair and returned for the summary.
func (im *Importer) Run(ctx context.Context, pairs []Pair, dryRun bool) ([]Result, error) {
	if im.binary == "" {
		return nil, fmt.Errorf("no terraform or tofu binary on PATH")
	}

	existing, err := im.stateAddresses(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(pairs))
	for _, p := range pairs {
		if existing[p.Address] {
			fmt.Fprintf(im.out, "Skipping %s: already in state\n", p.Address)
			results = append(results, Result{Pair: p, Skipped: true})
			continue
		}

		line := fmt.Sprintf("%s import %s %s", im.binary, p.Address, p.ID)
		if dryRun {
			fmt.Fprintf(im.out, "[DRY RUN] Would run: %s\n", line)
			results = append(results, Result{Pair: p})
			continue
		}

		fmt.Fprintf(im.out, "Running: %s\n", line)
		cmd := exec.CommandContext(ctx, im.binary, "import", p.Address, p.ID)
		cmd.Dir = im.rootDir
		cmd.Env = im.env()
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			importErr := fmt.Errorf("%s", strings.TrimSpace(stderr.String()))
			fmt.Fprintf(im.out, "%s Failed to import %s: %v\n", failMark, p.Address, importErr)
			results = append(results, Result{Pair: p, Err: importErr})
			continue
		}
		fmt.Fprintf(im.out, "%s Successfully imported %s\n", okMark, p.Address)
		results = append(results, Result{Pair: p})
	}
	return results, nil
}

// stateAddresses pulls the local state and returns the managed resource
// addresses it tracks. An unreachable backend reads as empty state so
// first-time imports are not blocked.
func (im *Importer) stateAddresses(ctx context.Context) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, im.binary, "state", "pull")
	cmd.Dir = im.rootDir
	cmd.Env = im.env()
	out, err := cmd.Output()
	if err != nil {
		log.WithError(err).Debugf("state pull failed, assuming empty state")
		return map[string]bool{}, nil
	}
	return managedAddresses(out), nil
}

// managedAddresses extracts the managed resource addresses from a pulled
// state document. Data sources are not importable and are left out.
func managedAddresses(state []byte) map[string]bool {
	addrs := map[string]bool{}
	gjson.GetBytes(state, "resources").ForEach(func(_, res gjson.Result) bool {
		if res.Get("mode").String() != "managed" {
			return true
		}
		addr := res.Get("type").String() + "." + res.Get("name").String()
		if mod := res.Get("module").String(); mod != "" {
			addr = mod + "." + addr
		}
		addrs[addr] = true
		return true
	})
	return addrs
}

// env returns the child process environment with the stack's profile and
// workspace applied.
func (im *Importer) env() []string {
	env := os.Environ()
	if p := im.st.Settings.Profile; p != "" {
		env = append(env, "AWS_PROFILE="+p)
	}
	env = append(env, "TF_WORKSPACE="+im.st.Settings.Workspace)
	return env
}
