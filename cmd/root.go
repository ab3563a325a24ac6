package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ganttdash",
	Short: "Ganttdash - a Gantt chart dashboard for GitLab projects",
	Long:  `Ganttdash serves an interactive Gantt chart built from the milestones and issues of a GitLab project.`,
}

func Execute() error {
	return rootCmd.Execute()
}
