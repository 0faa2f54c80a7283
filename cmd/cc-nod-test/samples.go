package main

import "github.com/yuya-takeyama/cc-nod/pkg/types"

type sample struct {
	Name    string
	Request types.PermissionRequest
}

var samples = []sample{
	{
		Name: "Bash command",
		Request: types.PermissionRequest{
			ToolName:  "Bash",
			ToolInput: map[string]interface{}{"command": `rm -rf /tmp/old-builds && echo "cleaned up"`},
		},
	},
	{
		Name: "Edit file (multi-line diff)",
		Request: types.PermissionRequest{
			ToolName: "Edit",
			ToolInput: map[string]interface{}{
				"file_path":  "/Users/you/project/src/auth/login.ts",
				"old_string": "const token = jwt.sign({ userId }, SECRET)\nconst expires = Date.now() + 3600\nreturn { token, expires }",
				"new_string": "const token = jwt.sign({ userId, role }, SECRET, { expiresIn: \"1h\" })\nconst expires = Date.now() + 3600 * 1000\nconst refreshToken = jwt.sign({ userId }, REFRESH_SECRET)\nreturn { token, refreshToken, expires }",
			},
		},
	},
	{
		Name: "Write file",
		Request: types.PermissionRequest{
			ToolName:  "Write",
			ToolInput: map[string]interface{}{"file_path": "/Users/you/project/config/database.yml"},
		},
	},
	{
		Name: "Read file",
		Request: types.PermissionRequest{
			ToolName:  "Read",
			ToolInput: map[string]interface{}{"file_path": "/etc/hosts"},
		},
	},
	{
		Name: "Web search",
		Request: types.PermissionRequest{
			ToolName:  "WebSearch",
			ToolInput: map[string]interface{}{"query": "bubbletea overlay always on top 2026"},
		},
	},
	{
		Name: "Glob pattern",
		Request: types.PermissionRequest{
			ToolName:  "Glob",
			ToolInput: map[string]interface{}{"pattern": "src/**/*.test.ts"},
		},
	},
	{
		Name: "Grep search",
		Request: types.PermissionRequest{
			ToolName:  "Grep",
			ToolInput: map[string]interface{}{"pattern": "TODO|FIXME|HACK", "path": "/Users/you/project"},
		},
	},
	{
		Name: "Long bash command",
		Request: types.PermissionRequest{
			ToolName:  "Bash",
			ToolInput: map[string]interface{}{"command": "docker compose -f docker-compose.prod.yml up -d --build --force-recreate --remove-orphans api worker scheduler"},
		},
	},
}

// burstSamples are sent together to exercise the queue
var burstSamples = []int{0, 1, 4}

// lookupSample resolves a 1-based menu number
func lookupSample(n int) (sample, bool) {
	if n < 1 || n > len(samples) {
		return sample{}, false
	}
	return samples[n-1], true
}
