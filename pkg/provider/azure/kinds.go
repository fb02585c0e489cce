package azure

import "github.com/matzehuels/drawtf/pkg/registry"

// Terraform azurerm resource kinds with a descriptor.
const (
	KeyVault                 = "azurerm_key_vault"
	Subnet                   = "azurerm_subnet"
	ApiManagement            = "azurerm_api_management"
	ApiManagementApi         = "azurerm_api_management_api"
	ApiManagementCertificate = "azurerm_api_management_certificate"
	ApiManagementDomain      = "azurerm_api_management_custom_domain"
	ApiManagementDiagnostic  = "azurerm_api_management_diagnostic"
	ApiManagementLogger      = "azurerm_api_management_logger"
	AppConfiguration         = "azurerm_app_configuration"
	ApplicationInsights      = "azurerm_application_insights"
	ResourceGroup            = "azurerm_resource_group"
	StorageAccount           = "azurerm_storage_account"
	StorageContainer         = "azurerm_storage_container"
	FunctionApp              = "azurerm_function_app"
	FunctionAppSlot          = "azurerm_function_app_slot"
	LinuxFunctionApp         = "azurerm_linux_function_app"
	ServicePlan              = "azurerm_service_plan"
	AppServicePlan           = "azurerm_app_service_plan"
	AppService               = "azurerm_app_service"
	AppServiceSlot           = "azurerm_app_service_slot"
	WindowsWebApp            = "azurerm_windows_web_app"
	WindowsWebAppSlot        = "azurerm_windows_web_app_slot"
	ServiceBusNamespace      = "azurerm_servicebus_namespace"
	ServiceBusQueue          = "azurerm_servicebus_queue"
	SignalR                  = "azurerm_signalr_service"
	ContainerGroup           = "azurerm_container_group"
	ContainerRegistry        = "azurerm_container_registry"
	CosmosAccount            = "azurerm_cosmosdb_account"
	CosmosSqlDatabase        = "azurerm_cosmosdb_sql_database"
	CosmosSqlContainer       = "azurerm_cosmosdb_sql_container"
	NetworkSecurityGroup     = "azurerm_network_security_group"
)

var apiManagementChildren = []string{
	ApiManagementApi,
	ApiManagementCertificate,
	ApiManagementDomain,
	ApiManagementDiagnostic,
	ApiManagementLogger,
}

// descriptors returns the full descriptor set in registration order.
func descriptors() []registry.Descriptor {
	return []registry.Descriptor{
		resource{kind: KeyVault, cat: security, metadata: attr("sku_name")},
		resource{kind: Subnet, cat: network, metadata: list("address_prefixes")},
		owner{
			resource: resource{kind: ApiManagement, cat: integration, height: "1.75", metadata: attr("sku_name")},
			children: apiManagementChildren,
			match:    byNameOrID("api_management_name", "api_management_id", "service"),
		},
		resource{kind: ApiManagementApi, cat: integration, height: "1.75", metadata: prefixed("path: /", "path")},
		resource{kind: ApiManagementCertificate, cat: security, height: "1.75"},
		resource{kind: ApiManagementDomain, cat: network, height: "1.75", metadata: hostNames},
		resource{kind: ApiManagementDiagnostic, cat: monitoring, metadata: attr("identifier")},
		resource{kind: ApiManagementLogger, cat: monitoring},
		resource{kind: AppConfiguration, cat: integration, height: "1.75", metadata: attr("sku")},
		resource{kind: ApplicationInsights, cat: monitoring, height: "1.6", metadata: attr("application_type")},
		resource{kind: ResourceGroup, cat: general, metadata: attr("location")},
		owner{
			resource: resource{kind: StorageAccount, cat: storage, height: "1.75", metadata: join("account_tier", "account_replication_type")},
			children: []string{StorageContainer},
			match:    byName("storage_account_name"),
		},
		resource{kind: StorageContainer, cat: storage, metadata: attr("container_access_type")},
		owner{
			resource: resource{kind: FunctionApp, cat: compute, metadata: prefixed("v", "version")},
			children: []string{FunctionAppSlot},
			match:    byNameOrID("function_app_name", "function_app_id", "sites"),
		},
		resource{kind: FunctionAppSlot, cat: compute},
		owner{
			resource: resource{kind: ServicePlan, cat: compute, height: "1.75", metadata: join("os_type", "sku_name")},
			children: []string{FunctionApp, LinuxFunctionApp, WindowsWebApp},
			match:    byID("service_plan_id", "serverFarms"),
		},
		owner{
			resource: resource{kind: ServiceBusNamespace, cat: integration, height: "1.8", metadata: attr("sku")},
			children: []string{ServiceBusQueue},
			match:    byNameOrID("namespace_name", "namespace_id", "namespaces"),
		},
		resource{kind: ServiceBusQueue, cat: integration, height: "1.8"},
		owner{
			resource: resource{kind: AppServicePlan, cat: compute, height: "1.75", metadata: appServicePlanSku},
			children: []string{FunctionApp, AppService},
			match:    byID("app_service_plan_id", "serverFarms"),
		},
		owner{
			resource: resource{kind: AppService, cat: web},
			children: []string{AppServiceSlot},
			match:    byName("app_service_name"),
		},
		owner{
			resource: resource{kind: LinuxFunctionApp, cat: compute},
			children: []string{FunctionAppSlot},
			match:    byNameOrID("function_app_name", "function_app_id", "sites"),
		},
		resource{kind: SignalR, cat: web, metadata: firstBlock("sku", "name")},
		resource{kind: ContainerGroup, cat: compute, metadata: attr("os_type")},
		resource{kind: ContainerRegistry, cat: storage, metadata: attr("sku")},
		owner{
			resource: resource{kind: WindowsWebApp, cat: web},
			children: []string{WindowsWebAppSlot},
			match:    byID("app_service_id", "sites"),
		},
		resource{kind: WindowsWebAppSlot, cat: web},
		owner{
			resource: resource{kind: CosmosAccount, cat: database, metadata: attr("kind")},
			children: []string{CosmosSqlDatabase},
			match:    byName("account_name"),
		},
		resource{kind: CosmosSqlContainer, cat: database, metadata: list("partition_key_paths", "partition_key_path")},
		owner{
			resource: resource{kind: CosmosSqlDatabase, cat: database},
			children: []string{CosmosSqlContainer},
			match:    cosmosDatabase,
		},
		resource{kind: AppServiceSlot, cat: web},
		resource{kind: NetworkSecurityGroup, cat: security, metadata: ruleCount},
	}
}
