package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/repairhub/internal/app"
	"github.com/Additional-Code/repairhub/internal/dto"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/projection"
	serviceorder "github.com/Additional-Code/repairhub/internal/service/order"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

func newOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect orders",
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print an order as the given viewer sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewerID, _ := cmd.Flags().GetString("viewer-id")
			viewerRole, _ := cmd.Flags().GetString("viewer-role")
			viewer := projection.Viewer{ID: viewerID, Role: lifecycle.Role(viewerRole)}
			if viewer.ID != "" && !viewer.Role.Valid() {
				return errorbank.Validation("--viewer-role must be customer, technician or system")
			}

			var svc *serviceorder.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				order, err := svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dto.NewOrderResponse(*order, viewer))
			})
		},
	}
	showCmd.Flags().String("viewer-id", "", "Viewer id used to compute next_action")
	showCmd.Flags().String("viewer-role", "", "Viewer role: customer, technician or system")

	cmd.AddCommand(showCmd)
	return cmd
}
