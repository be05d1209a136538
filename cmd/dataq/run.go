package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/dataq/pkg/config"
	"github.com/codeready-toolchain/dataq/pkg/driver"
)

var runProjectID string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one interactive analysis session against the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Initialize(ctx, configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		a, cleanup, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sess := a.manager.New(runProjectID)
		input := driver.NewTerminalInput(os.Stdin, os.Stdout)

		state, err := a.driver.Run(ctx, sess, input)
		if err != nil {
			fmt.Println(errorBoxStyle.Render(fmt.Sprintf("session failed: %v", err)))
			return nil
		}

		if state.ErrorMessage != "" {
			fmt.Println(errorBoxStyle.Render(fmt.Sprintf("%s: %s", state.ErrorCode, state.ErrorMessage)))
			return nil
		}

		header := titleStyle.Render("Analysis Report")
		fmt.Println(reportBoxStyle.Render(header + "\n\n" + state.AnalysisReport))
		fmt.Println(mutedText.Render(fmt.Sprintf("session %s, %d quer%s run", sess.ID(),
			len(state.QueryResults), plural(len(state.QueryResults)))))

		return nil
	},
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	runCmd.Flags().StringVar(&runProjectID, "project-id", "default", "project identifier scoping dataset visibility")
	rootCmd.AddCommand(runCmd)
}
