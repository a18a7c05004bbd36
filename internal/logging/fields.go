package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCommunity is the standardized structured logging key for community identifiers.
	FieldCommunity = "community"
	// FieldRequester is the standardized structured logging key for requester/owner identifiers.
	FieldRequester = "requester"
	// FieldSession is the standardized structured logging key for capture session identifiers.
	FieldSession = "session"
	// FieldWorkflow is the standardized structured logging key for workflow names.
	FieldWorkflow = "workflow"
	// FieldStage is the standardized structured logging key for session stages.
	FieldStage = "stage"
	// FieldEventType tags records that automated tooling keys off.
	FieldEventType = "event_type"
)

func Community(id string) Attr { return String(FieldCommunity, id) }

func Requester(id string) Attr { return String(FieldRequester, id) }

func Session(id string) Attr { return String(FieldSession, id) }

func Workflow(name string) Attr { return String(FieldWorkflow, name) }
