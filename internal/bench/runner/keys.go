package runner

// Action names accepted in script steps.
const (
	ActionCreate        = "create"
	ActionDestroy       = "destroy"
	ActionGetModel      = "get_model"
	ActionVoltageSpec   = "voltage_spec"
	ActionCurrentSpec   = "current_spec"
	ActionSetVoltage    = "set_voltage"
	ActionGetVoltage    = "get_voltage"
	ActionSetCurrent    = "set_current"
	ActionGetCurrent    = "get_current"
	ActionSetOutput     = "set_output"
	ActionGetOutput     = "get_output"
	ActionConnectUUT    = "connect_uut"
	ActionDisconnectUUT = "disconnect_uut"
	ActionUUTConnected  = "uut_connected"
	ActionReadStatus    = "read_status"
	ActionCountEvents   = "count_events"
	ActionReset         = "reset"
)

// Step parameter keys.
const (
	ParamPSU          = "psu"
	ParamHandle       = "handle"
	ParamValue        = "value"
	ParamEnabled      = "enabled"
	ParamLoad         = "load"
	ParamContext      = "context"
	ParamBufferSize   = "buffer_size"
	ParamOperation    = "operation"
	ParamCategory     = "category"
	ParamResult       = "result"
	ParamFailuresOnly = "failures_only"
)

// Step output keys.
const (
	KeyResult     = "result"
	KeyError      = "error"
	KeyHandle     = "handle"
	KeyModel      = "model"
	KeySize       = "size"
	KeyMin        = "min"
	KeyMax        = "max"
	KeyResolution = "resolution"
	KeyVoltage    = "voltage"
	KeyCurrent    = "current"
	KeyPower      = "power"
	KeyOutput     = "output"
	KeyConnected  = "connected"
	KeyCount      = "count"
	KeyHandles    = "handles"
)

// DefaultPSU is the alias used when a step names none.
const DefaultPSU = "main"
