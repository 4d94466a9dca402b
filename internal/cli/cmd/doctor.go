package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/waywake/internal/cli/styles"
	"github.com/bnema/waywake/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment can run waywake",
	Long: `Doctor probes everything the daemon needs:

- Wayland session variables
- compositor connection and idle-inhibit protocol support
- pactl and a reachable sound server
- XDG desktop portal inhibition (informational fallback)

Examples:
  waywake doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx := app.WithLogging(cmd.Context())

	rep := doctor.Run(ctx, app.Config)

	report := styles.DoctorReport{
		OverallOK: rep.OK(),
		Checks:    make([]styles.DoctorCheck, 0, len(rep.Checks)),
	}
	for _, c := range rep.Checks {
		report.Checks = append(report.Checks, styles.DoctorCheck{
			Name:     c.Name,
			OK:       c.OK,
			Detail:   c.Detail,
			Required: c.Required,
		})
	}

	renderer := styles.NewDoctorRenderer(app.Theme)
	fmt.Println(renderer.Render(report))

	if !rep.OK() {
		return fmt.Errorf("environment requirements not met")
	}
	return nil
}
