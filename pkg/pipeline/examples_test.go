package pipeline

import (
	"context"
	"strings"
	"testing"
)

const exampleState = "../../examples/azure/terraform.tfstate"

func TestExampleConfigs(t *testing.T) {
	tests := []struct {
		config string
		want   []string
	}{
		{
			config: "../../examples/azure/diagram.json",
			want: []string{
				`label="Shop (dev)"`,
				`"AZURERM_SERVICE_PLAN: PLAN-SHOP-DEV"`,
				`"AZURERM_SERVICEBUS_NAMESPACE: SB-SHOP-DEV"`,
				`"Payments API"`,
				`label="publishes"`,
				`color="gray40"`,
				`environment: dev \l`,
			},
		},
		{
			config: "../../examples/azure/diagram.yaml",
			want: []string{
				`label="Shop storage"`,
				`"AZURERM_STORAGE_ACCOUNT: STSHOPDEV"`,
				`label="writes"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.config, func(t *testing.T) {
			r := NewRunner(nil, nil)
			res, err := r.Execute(context.Background(), Options{
				ConfigPath: tt.config,
				StatePath:  exampleState,
				Formats:    []string{"dot"},
			})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(res.DOT, w) {
					t.Errorf("DOT missing %s", w)
				}
			}
			if len(res.Report.Links.Skipped) != 0 {
				t.Errorf("skipped links: %v", res.Report.Links.Skipped)
			}
		})
	}
}

func TestExampleRoleAssignmentSkipped(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{StatePath: exampleState, Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range res.Components {
		if c.Kind == "azurerm_role_assignment" {
			t.Errorf("unsupported kind ingested: %s", c.Key())
		}
	}
	if res.Options.OutputPath != "../../examples/azure/terraform" {
		t.Errorf("output path = %q", res.Options.OutputPath)
	}
}
