package compiler

import "strings"

// Recognized processor option keys and their environment variable
// counterparts. Every overridable setting resolves option-first, then
// environment, then config file value, then built-in default.
const (
	OptConfig     = "pipeline.config"
	OptTransport  = "pipeline.transport"
	OptPlatform   = "pipeline.platform"
	OptOutputDir  = "pipeline.outputDir"
	OptModuleName = "pipeline.moduleName"
	OptMapping    = "pipeline.runtimeMapping"
	OptDescriptor = "pipeline.descriptorSet"
	OptPluginHost = "pipeline.pluginHost"

	OptAutoConvert    = "pipeline.mapper.autoConvert"
	OptFunctionStrict = "pipeline.function.strictUnary"

	EnvConfig         = "PIPELINE_CONFIG"
	EnvTransport      = "PIPELINE_TRANSPORT"
	EnvPlatform       = "PIPELINE_PLATFORM"
	EnvOutputDir      = "PIPELINE_OUTPUT_DIR"
	EnvModuleName     = "PIPELINE_MODULE_NAME"
	EnvMapping        = "PIPELINE_RUNTIME_MAPPING"
	EnvDescriptor     = "PIPELINE_DESCRIPTOR_SET"
	EnvPluginHost     = "PIPELINE_PLUGIN_HOST"
	EnvAutoConvert    = "PIPELINE_MAPPER_AUTO_CONVERT"
	EnvFunctionStrict = "PIPELINE_FUNCTION_STRICT_UNARY"
)

// resolve applies the override precedence chain for one setting. configValue
// is the value read from the config file ("" when absent).
func (r *Run) resolve(optKey, envKey, configValue, fallback string) string {
	if v, ok := r.Options[optKey]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := r.LookupEnv(envKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if strings.TrimSpace(configValue) != "" {
		return strings.TrimSpace(configValue)
	}
	return fallback
}

// resolveBool is resolve for flag-valued settings.
func (r *Run) resolveBool(optKey, envKey string, configValue bool) bool {
	raw := r.resolve(optKey, envKey, "", "")
	if raw == "" {
		return configValue
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
