package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/tags"
)

var (
	showPhase int
	showFinal bool
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's phases and progress",
	Long: `Show a processing session. With --phase N the stored response for that phase is
printed; with --final the document that is merged into the knowledge base.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showPhase, "phase", "p", 0, "Print the response for this phase")
	showCmd.Flags().BoolVar(&showFinal, "final", false, "Print the final document")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.svc.Get(args[0])
	if err != nil {
		return err
	}
	machine := a.svc.Machine()

	if showFinal {
		fmt.Print(machine.FinalDocument(session))
		return nil
	}
	if showPhase != 0 {
		phase := session.Phase(showPhase)
		if phase == nil {
			return fmt.Errorf("no phase %d (sessions have %d phases)", showPhase, len(session.Phases))
		}
		fmt.Print(phase.Response)
		return nil
	}

	fmt.Printf("%s\n", session.Title)
	fmt.Printf("  ID:       %s\n", session.ID)
	fmt.Printf("  Date:     %s\n", session.Date)
	if len(session.Tags) > 0 {
		fmt.Printf("  Tags:     %s\n", tags.Format(session.Tags))
	}
	fmt.Printf("  Progress: %d%%\n", machine.ProgressPercent(session))
	fmt.Printf("  Created:  %s\n", humanize.Time(session.Created))
	fmt.Printf("  Updated:  %s\n", humanize.Time(session.Modified))
	fmt.Printf("  Transcript: %s characters\n", humanize.Comma(int64(len([]rune(session.Transcript)))))
	fmt.Println()

	for _, p := range session.Phases {
		marker := "[ ]"
		switch {
		case p.Completed:
			marker = "[x]"
		case p.Number == session.CurrentPhaseIndex:
			marker = "[>]"
		}
		fmt.Printf("%s Phase %d: %s (%s)\n", marker, p.Number, p.Name, p.ResponsibleAgent)
		if p.Response != "" {
			fmt.Printf("    %s\n", truncate(p.Response, 100))
		}
	}

	if !machine.IsComplete(session) {
		fmt.Println()
		fmt.Printf("Next: chronicler prompt %s\n", session.ID)
	}
	return nil
}
