package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/cubedaw/engine/internal/plugin"
	"github.com/spf13/cobra"
)

func newValidatePluginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-plugin <path>",
		Short: "Validate a WASM plugin module's sections and node exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validatePlugin(args[0])
		},
	}
}

func validatePlugin(path string) error {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cubedawd: read %s: %w", path, err)
	}

	p, err := plugin.Prepare(wasm)
	if err != nil {
		return fmt.Errorf("cubedawd: %s failed validation: %w", path, err)
	}

	fmt.Printf("%s: valid plugin, version %s\n", path, p.Version)
	nodes := p.Nodes()
	sort.Strings(nodes)
	fmt.Printf("exports %d node(s):\n", len(nodes))
	for _, key := range nodes {
		fmt.Printf("  %s -> %s\n", key, p.NodeList[key])
	}
	if p.Meta != nil {
		fmt.Printf("meta: %+v\n", *p.Meta)
	}
	return nil
}
