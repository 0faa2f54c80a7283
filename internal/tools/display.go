package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// Tool names
const (
	ToolTodoWrite    = "TodoWrite"
	ToolBash         = "Bash"
	ToolRead         = "Read"
	ToolGlob         = "Glob"
	ToolEdit         = "Edit"
	ToolMultiEdit    = "MultiEdit"
	ToolWrite        = "Write"
	ToolLS           = "LS"
	ToolGrep         = "Grep"
	ToolWebFetch     = "WebFetch"
	ToolWebSearch    = "WebSearch"
	ToolTask         = "Task"
	ToolExitPlanMode = "ExitPlanMode"
	ToolNotebookRead = "NotebookRead"
	ToolNotebookEdit = "NotebookEdit"
)

// ToolInfo holds display information for tools
type ToolInfo struct {
	Name      string
	Label     string // Card header label
	Emoji     string
	SlackIcon string // Slack emoji code for Slack messages

	// DetailLabel/DetailKey select the tool_input field shown in the card
	// body. An empty DetailKey means the whole input is shown as JSON.
	DetailLabel string
	DetailKey   string
}

// toolInfoMap maps tool names to their display information
var toolInfoMap = map[string]ToolInfo{
	ToolTodoWrite:    {Name: ToolTodoWrite, Label: "TodoWrite", Emoji: "📋", SlackIcon: ":memo:"},
	ToolBash:         {Name: ToolBash, Label: "Terminal", Emoji: "💻", SlackIcon: ":computer:", DetailLabel: "Command", DetailKey: "command"},
	ToolRead:         {Name: ToolRead, Label: "Read", Emoji: "📖", SlackIcon: ":open_book:", DetailLabel: "File", DetailKey: "file_path"},
	ToolGlob:         {Name: ToolGlob, Label: "Glob", Emoji: "🔍", SlackIcon: ":mag:", DetailLabel: "Pattern", DetailKey: "pattern"},
	ToolEdit:         {Name: ToolEdit, Label: "Edit", Emoji: "✏️", SlackIcon: ":pencil2:", DetailLabel: "File", DetailKey: "file_path"},
	ToolMultiEdit:    {Name: ToolMultiEdit, Label: "MultiEdit", Emoji: "✏️", SlackIcon: ":pencil2:", DetailLabel: "File", DetailKey: "file_path"},
	ToolWrite:        {Name: ToolWrite, Label: "Write", Emoji: "📝", SlackIcon: ":memo:", DetailLabel: "File", DetailKey: "file_path"},
	ToolLS:           {Name: ToolLS, Label: "LS", Emoji: "📁", SlackIcon: ":file_folder:", DetailLabel: "Path", DetailKey: "path"},
	ToolGrep:         {Name: ToolGrep, Label: "Grep", Emoji: "🔍", SlackIcon: ":mag:", DetailLabel: "Search", DetailKey: "pattern"},
	ToolWebFetch:     {Name: ToolWebFetch, Label: "Fetch", Emoji: "🌐", SlackIcon: ":globe_with_meridians:", DetailLabel: "URL", DetailKey: "url"},
	ToolWebSearch:    {Name: ToolWebSearch, Label: "Search", Emoji: "🌎", SlackIcon: ":earth_americas:", DetailLabel: "Query", DetailKey: "query"},
	ToolTask:         {Name: ToolTask, Label: "Task", Emoji: "🤖", SlackIcon: ":robot_face:"},
	ToolExitPlanMode: {Name: ToolExitPlanMode, Label: "ExitPlanMode", Emoji: "🏁", SlackIcon: ":checkered_flag:"},
	ToolNotebookRead: {Name: ToolNotebookRead, Label: "NotebookRead", Emoji: "📓", SlackIcon: ":notebook:"},
	ToolNotebookEdit: {Name: ToolNotebookEdit, Label: "Notebook", Emoji: "📔", SlackIcon: ":notebook_with_decorative_cover:"},
}

// GetToolInfo returns tool information for the given tool name
func GetToolInfo(toolName string) ToolInfo {
	if info, ok := toolInfoMap[toolName]; ok {
		return info
	}
	if IsMCPTool(toolName) {
		info := GetMCPToolInfo()
		info.Name = toolName
		info.Label = toolName
		return info
	}

	// Default for unknown tools
	return ToolInfo{
		Name:      toolName,
		Label:     toolName,
		Emoji:     "🔧",
		SlackIcon: ":wrench:",
	}
}

// GetToolLabel returns the card header label for the given tool name
func GetToolLabel(toolName string) string {
	return GetToolInfo(toolName).Label
}

// IsMCPTool checks if the tool name is an MCP tool
func IsMCPTool(toolName string) bool {
	return strings.HasPrefix(toolName, "mcp__")
}

// GetMCPToolInfo returns tool information for MCP tools
func GetMCPToolInfo() ToolInfo {
	return ToolInfo{
		Name:      "MCP Tool",
		Label:     "MCP Tool",
		Emoji:     "🔌",
		SlackIcon: ":electric_plug:",
	}
}

// ToolDetail is the labelled value shown in the card body
type ToolDetail struct {
	Label string
	Value string
}

// GetToolDetail picks the one input field that best describes the request
func GetToolDetail(req types.PermissionRequest) ToolDetail {
	info := GetToolInfo(req.ToolName)
	if info.DetailKey == "" {
		return ToolDetail{Label: "Input", Value: formatInput(req.ToolInput)}
	}
	return ToolDetail{Label: info.DetailLabel, Value: stringValue(req.ToolInput[info.DetailKey])}
}

// IsEditWithDiff reports whether the request is an Edit carrying both sides
// of the replacement, which is when a diff preview is shown.
func IsEditWithDiff(req types.PermissionRequest) bool {
	if req.ToolName != ToolEdit {
		return false
	}
	oldStr, _ := req.StringInput("old_string")
	newStr, _ := req.StringInput("new_string")
	return oldStr != "" && newStr != ""
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func formatInput(input map[string]interface{}) string {
	if input == nil {
		input = map[string]interface{}{}
	}
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return fmt.Sprint(input)
	}
	return string(data)
}
