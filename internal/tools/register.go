package tools

import (
	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/registry"
)

// RegisterAll wires every built-in file, shell, and image tool into reg.
// Specialist tools (internal/specialists) register themselves separately,
// since they need a config.Config to resolve their target endpoints.
func RegisterAll(reg *registry.Registry) {
	reg.Register(agent.ToolSpec{
		Name:        "read_file",
		Description: "Read a file's contents, optionally with line numbers.",
	}, ReadFile)

	reg.Register(agent.ToolSpec{
		Name:        "write_file",
		Description: "Create or overwrite a file with the given content.",
	}, WriteFile)

	reg.Register(agent.ToolSpec{
		Name:        "edit_file",
		Description: "Replace an exact substring in a file that was previously read.",
	}, EditFile)

	reg.Register(agent.ToolSpec{
		Name:        "mkdir",
		Description: "Create a directory, including parents.",
	}, Mkdir)

	reg.Register(agent.ToolSpec{
		Name:        "ls",
		Description: "List a directory's immediate entries.",
	}, ListDirectory)

	reg.Register(agent.ToolSpec{
		Name:        "get_working_directory",
		Description: "Return the current working directory.",
	}, GetWorkingDirectory)

	reg.Register(agent.ToolSpec{
		Name:        "run_shell",
		Description: "Run a whitelisted shell command.",
	}, RunShell)

	reg.Register(agent.ToolSpec{
		Name:        "read_image",
		Description: "Read an image file and return it as a base64 data URI.",
	}, ReadImage)

	reg.Register(agent.ToolSpec{
		Name:        "write_image",
		Description: "Decode base64 image data and save it to a file.",
	}, WriteImage)
}
