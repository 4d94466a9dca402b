package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/waywake/internal/audio"
	"github.com/bnema/waywake/internal/cli/styles"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current audio state",
	Long: `Query the sound server once and report whether any stream is playing,
and what a running daemon would do about it.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.WithLogging(cmd.Context())

	pactlPath, err := audio.ResolvePactl(app.Config.Audio.PactlPath)
	if err != nil {
		return err
	}

	server, err := audio.ServerInfo(ctx, pactlPath)
	if err != nil {
		return err
	}

	playing, err := audio.NewOracle(pactlPath).AnyUncorked(ctx)
	if err != nil {
		return err
	}

	t := app.Theme
	fmt.Printf("%s %s\n", t.Subtle.Render("Sound server"), t.Normal.Render(server))

	if playing {
		fmt.Printf("%s %s %s\n",
			t.SuccessStyle.Render(styles.IconPlay),
			t.Normal.Render("Audio"),
			t.Badge.Render("playing"),
		)
		fmt.Println(t.Subtle.Render("a running daemon keeps the screen awake"))
	} else {
		fmt.Printf("%s %s %s\n",
			t.Subtle.Render(styles.IconMute),
			t.Normal.Render("Audio"),
			t.BadgeMuted.Render("silent"),
		)
		fmt.Println(t.Subtle.Render("a running daemon lets the screen sleep"))
	}
	return nil
}
