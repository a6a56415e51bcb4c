package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestSetGroupedUsage(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("check", "", "Check command")
	cmd.Flags().String("agent", "claude", "Agent preset")
	cmd.Flags().String("tag", "ai", "Comment tag")
	cmd.Flags().Bool("no-config", false, "Skip config")
	cmd.Flags().Bool("help", false, "help")

	setGroupedUsage(cmd)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Usage(); err != nil {
		t.Fatalf("Usage() returned error: %v", err)
	}

	output := buf.String()

	for _, header := range []string{"Checks:", "Agent Settings:", "Scanning:", "Advanced:"} {
		if !strings.Contains(output, header) {
			t.Errorf("expected group header %q in output, got:\n%s", header, output)
		}
	}

	checksIdx := strings.Index(output, "Checks:")
	agentIdx := strings.Index(output, "Agent Settings:")
	checkFlagIdx := strings.Index(output, "--check")
	agentFlagIdx := strings.Index(output, "--agent")

	if checkFlagIdx < checksIdx || checkFlagIdx > agentIdx {
		t.Error("expected --check under Checks")
	}
	if agentFlagIdx < agentIdx {
		t.Error("expected --agent under Agent Settings")
	}

	otherIdx := strings.Index(output, "Other Flags:")
	if otherIdx < 0 {
		t.Fatalf("expected 'Other Flags:' section for ungrouped flags, got:\n%s", output)
	}
	if helpIdx := strings.Index(output, "--help"); helpIdx < otherIdx {
		t.Error("expected --help under Other Flags")
	}
}

func TestSetGroupedUsage_EmptyGroupsOmitted(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("check", "", "Check command")

	setGroupedUsage(cmd)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	_ = cmd.Usage()

	if strings.Contains(buf.String(), "Scanning:") {
		t.Error("Scanning group should be omitted when no scanning flags are defined")
	}
}

func TestSetGroupedUsage_ListsSubcommands(t *testing.T) {
	root := newRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"config", "scan", "--check", "--no-watch"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestFlagGroupsCoverAllFlags(t *testing.T) {
	// Catches new flags that haven't been categorized.
	grouped := make(map[string]bool)
	for _, g := range flagGroups {
		for _, name := range g.flags {
			grouped[name] = true
		}
	}

	exempt := map[string]bool{
		"help":    true,
		"version": true,
	}

	root := newRootCmd()
	var uncategorized []string
	visit := func(f *pflag.Flag) {
		if !grouped[f.Name] && !exempt[f.Name] {
			uncategorized = append(uncategorized, f.Name)
		}
	}
	root.PersistentFlags().VisitAll(visit)
	root.LocalNonPersistentFlags().VisitAll(visit)
	for _, sub := range root.Commands() {
		sub.LocalNonPersistentFlags().VisitAll(visit)
	}

	if len(uncategorized) > 0 {
		t.Errorf("flags not assigned to any group in flagGroups: %v\nAdd them to a group in help.go", uncategorized)
	}
}
