package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/repository"
	"github.com/leadops/lead-dashboard/internal/service"
)

func newOperatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage dashboard operators",
	}
	cmd.AddCommand(newOperatorCreateCmd())
	return cmd
}

func newOperatorCreateCmd() *cobra.Command {
	var name, email, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator in the operators table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			operatorRole := domain.OperatorRole(strings.ToUpper(role))
			if !operatorRole.Valid() {
				return fmt.Errorf("invalid --role %q (want ADMIN or AGENT)", role)
			}

			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()
			if !env.postgres.Configured() {
				return errors.New("operator accounts need POSTGRES_DSN")
			}

			authService := service.NewAuthService(env.cfg.Auth, repository.NewOperatorRepository(env.postgres.PoolHandle()))
			operator, err := authService.CreateOperator(cmd.Context(), name, email, password, operatorRole)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created operator %s (%s, %s)\n", operator.ID, operator.Email, operator.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name; agents see leads assigned to this name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	cmd.Flags().StringVar(&role, "role", string(domain.OperatorRoleAgent), "ADMIN or AGENT")
	for _, flag := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}
