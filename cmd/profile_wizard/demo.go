package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/worker-profile-wizard/internal/events"
	"github.com/jonathan/worker-profile-wizard/internal/schemas"
	"github.com/jonathan/worker-profile-wizard/internal/service"
	"github.com/jonathan/worker-profile-wizard/internal/session"
	"github.com/jonathan/worker-profile-wizard/internal/types"
	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

var demoShowEvents bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk a sample worker through the wizard",
	Long: `Run a scripted session against the in-memory store and print progress, badges and
step summaries after every step. No external services are used.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&demoShowEvents, "events", false, "Print published events")
	rootCmd.AddCommand(demoCmd)
}

// demoAnswers are the fields filled in on each step before pressing Next.
var demoAnswers = [wizard.TotalSteps][]types.UpdateFieldRequest{
	wizard.StepResidency: {
		{Field: "residenceStatus", Value: "resident"},
		{Field: "residenceProvince", Value: "Gyeonggi"},
		{Field: "residenceCity", Value: "Ansan"},
	},
	wizard.StepIdentity: {
		{Field: "lastName", Value: "Nguyen"},
		{Field: "firstName", Value: "Van An"},
		{Field: "nationality", Value: "Vietnam"},
		{Field: "birthDate", Value: "1994-05-12"},
	},
	wizard.StepVisa: {
		{Field: "visaType", Value: "E-9"},
		{Field: "visaSubType", Value: "E-9-1"},
		{Field: "visaExpiryDate", Value: "2027-08-31"},
	},
	wizard.StepLanguage: {
		{Field: "topikLevel", Value: "3"},
		{Field: "kiipLevel", Value: "2"},
	},
	wizard.StepEducation: {
		{Field: "educationLevel", Value: "high_school"},
		{Field: "educationCountry", Value: "Vietnam"},
	},
	wizard.StepEvaluation: {
		{Field: "deltaScore", Value: "0"},
	},
	wizard.StepExperience: {
		{Field: "totalExperienceYears", Value: "4.5"},
	},
	wizard.StepPreferences: {
		{Field: "desiredJobType", Value: "manufacturing"},
		{Field: "desiredProvince", Value: "Gyeonggi"},
		{Field: "desiredSalaryMin", Value: "2300000"},
		{Field: "desiredSalaryMax", Value: "2800000"},
		{Field: "salaryType", Value: "monthly"},
	},
}

// printPublisher writes events to the command output.
type printPublisher struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "  event %-15s step=%s progress=%d\n", e.Type, e.Step, e.Progress)
	return err
}

func (p *printPublisher) Close() error { return nil }

func runDemo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	deps := service.Dependencies{Store: session.NewMemoryStore(0)}
	if demoShowEvents {
		deps.Publisher = &printPublisher{out: out}
	}
	if v, err := schemas.LoadValidator(schemas.DefaultProfileSchema); err == nil {
		deps.Validator = v
	}

	svc, err := service.New(deps, service.Options{})
	if err != nil {
		return err
	}

	owner := uuid.New()
	view, err := svc.Start(ctx, owner)
	if err != nil {
		return err
	}
	id := view.SessionID
	fmt.Fprintf(out, "session %s\n", id)

	for step := wizard.Step(0); step < wizard.TotalSteps; step++ {
		if _, err := svc.UpdateFields(ctx, owner, id, demoAnswers[step]); err != nil {
			return fmt.Errorf("step %s: %w", step, err)
		}
		if step == wizard.StepExperience {
			_, err := svc.AddExperience(ctx, owner, id, types.ExperienceInput{
				Company:   "Hanil Metal",
				Position:  "Press operator",
				StartDate: "2021-03",
				IsCurrent: true,
			})
			if err != nil {
				return err
			}
		}
		if step == wizard.StepPreferences {
			for _, day := range []string{"MON", "TUE", "WED", "THU", "FRI"} {
				if _, err := svc.ToggleWorkDay(ctx, owner, id, day); err != nil {
					return err
				}
			}
		}

		label := view.NextLabel
		view, err = svc.Next(ctx, owner, id)
		if err != nil {
			return err
		}
		printDemoStep(out, step, label, view)
	}

	view, err = svc.Save(ctx, owner, id)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	fmt.Fprintf(out, "saved at %s\n", view.SavedAt.Format("2006-01-02 15:04:05"))
	for _, st := range view.Steps {
		fmt.Fprintf(out, "  %-12s %s\n", st.ID, st.Summary)
	}
	return nil
}

func printDemoStep(out io.Writer, step wizard.Step, pressed string, v types.SessionView) {
	badges := make([]string, len(v.Badges))
	for i, b := range v.Badges {
		badges[i] = b.Label
	}
	def, _ := step.Definition()
	fmt.Fprintf(out, "[%d/%d] %-12s %-8s progress=%3d%% badges=[%s]\n",
		int(step)+1, wizard.TotalSteps, def.Label, pressed, v.Progress, strings.Join(badges, ", "))
}
