package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leadops/lead-dashboard/internal/api/dto"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/repository"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored leads or pipeline stages",
	}
	cmd.AddCommand(newImportLeadsCmd(), newImportStagesCmd())
	return cmd
}

func newImportLeadsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Replace the primary lead collection from a JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read leads: %w", err)
			}
			leads, ok := repository.DecodeLeads(payload)
			if !ok {
				return fmt.Errorf("%s is not a JSON array of leads", file)
			}

			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.dashboard.ReplaceLeads(cmd.Context(), leads); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d leads\n", len(leads))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of leads")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportStagesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Replace the pipeline stage configuration from a YAML or JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read stages: %w", err)
			}
			stages, err := parseStages(payload)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.dashboard.ReplaceStages(cmd.Context(), stages); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d stages\n", len(stages))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON stage file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseStages accepts either a bare list of stages or a document with a
// top-level "stages" list. JSON input parses as YAML.
func parseStages(payload []byte) ([]domain.PipelineStage, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("decode stages: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("no stages found")
	}

	var doc dto.ReplaceStagesRequest
	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		if err := node.Decode(&doc.Stages); err != nil {
			return nil, fmt.Errorf("decode stages: %w", err)
		}
	} else {
		var wrapped struct {
			Stages []domain.PipelineStage `yaml:"stages"`
		}
		if err := node.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decode stages: %w", err)
		}
		doc.Stages = wrapped.Stages
	}
	if err := dto.Validate(doc); err != nil {
		return nil, err
	}
	return doc.Stages, nil
}
