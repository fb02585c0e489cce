// Package azure registers descriptors and grouping rules for Terraform
// azurerm resources.
//
// Nodes are drawn as shaped, filled boxes per service category; the label is
// the resource name followed by a short attribute summary such as a SKU.
package azure

import (
	"github.com/matzehuels/drawtf/pkg/grouping"
	"github.com/matzehuels/drawtf/pkg/registry"
)

// Name identifies the platform on the command line and in configs.
const Name = "azure"

// Registry returns a new registry holding every azure descriptor.
func Registry() *registry.Registry {
	return registry.New(descriptors()...)
}

// Plan returns the grouping passes, innermost ownership first, so that a
// cosmos account receives databases that already hold their containers.
func Plan() grouping.Plan {
	return grouping.Plan{
		Passes: []string{
			CosmosSqlDatabase,
			CosmosAccount,
			FunctionApp,
			LinuxFunctionApp,
			WindowsWebApp,
			AppService,
			ApiManagement,
			ServicePlan,
			AppServicePlan,
			ServiceBusNamespace,
			StorageAccount,
		},
		Container: ResourceGroup,
	}
}
