package commands

// CommandName declares the supported command identifiers.
const (
	CmdAdd     = "add"
	CmdDo      = "do"
	CmdDrop    = "drop"
	CmdList    = "list"
	CmdHelp    = "help"
	CmdVersion = "version"

	CmdLs  = "ls"
	CmdRun = "run"
	CmdPop = "pop"
)
