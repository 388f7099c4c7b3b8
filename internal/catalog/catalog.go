// Package catalog provides the fixed phase-to-skill recommendation tables.
//
// The tables are hand-curated, initialized once, and never mutated at
// runtime, so lookups need no synchronization.
package catalog

import "github.com/ternarybob/devtodo/internal/models"

// Skill describes a recommended practice for tasks in a given phase.
type Skill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	WhenToUse   string   `json:"when_to_use"`
	KeySteps    []string `json:"key_steps,omitempty"`
}

// phaseSkills maps each phase to its ordered skill names. The first entry is
// treated as the primary recommendation.
var phaseSkills = map[models.Phase][]string{
	models.PhasePlanning: {"brainstorming", "writing-plans"},
	models.PhaseDesign:   {"brainstorming", "writing-plans"},
	models.PhaseImplementation: {
		"test-driven-development",
		"executing-plans",
		"dispatching-parallel-agents",
		"using-git-worktrees",
		"subagent-driven-development",
	},
	models.PhaseTesting: {
		"test-driven-development",
		"systematic-debugging",
		"verification-before-completion",
	},
	models.PhaseDeployment: {
		"finishing-a-development-branch",
		"requesting-code-review",
		"receiving-code-review",
	},
}

var skillDetails = map[string]Skill{
	"brainstorming": {
		Name:        "brainstorming",
		Description: "Turn ideas into fully formed designs through collaborative dialogue",
		WhenToUse:   "Before any creative work - creating features, building components, adding functionality, or modifying behavior",
		KeySteps: []string{
			"Check project context",
			"Ask questions one at a time",
			"Propose 2-3 approaches",
			"Present design in sections",
		},
	},
	"writing-plans": {
		Name:        "writing-plans",
		Description: "Write comprehensive implementation plans with bite-sized tasks",
		WhenToUse:   "When you have a spec or requirements for a multi-step task",
		KeySteps: []string{
			"Break into atomic tasks",
			"Include exact file paths",
			"Write complete code snippets",
			"Add test commands",
		},
	},
	"test-driven-development": {
		Name:        "test-driven-development",
		Description: "Write tests before implementation code",
		WhenToUse:   "When implementing any feature or bugfix",
		KeySteps: []string{
			"Write failing test first",
			"Implement minimal code to pass",
			"Refactor",
			"Repeat",
		},
	},
	"executing-plans": {
		Name:        "executing-plans",
		Description: "Execute implementation plans in separate session with review checkpoints",
		WhenToUse:   "When you have a written implementation plan to execute",
		KeySteps: []string{
			"Review plan",
			"Set up worktree",
			"Execute task by task",
			"Verify at checkpoints",
		},
	},
	"dispatching-parallel-agents": {
		Name:        "dispatching-parallel-agents",
		Description: "Run multiple independent tasks in parallel",
		WhenToUse:   "When facing 2+ independent tasks without shared state",
		KeySteps: []string{
			"Identify independent tasks",
			"Dispatch agents in parallel",
			"Collect results",
			"Synthesize",
		},
	},
	"using-git-worktrees": {
		Name:        "using-git-worktrees",
		Description: "Create isolated git worktrees for feature work",
		WhenToUse:   "When starting feature work that needs isolation",
		KeySteps: []string{
			"Create worktree",
			"Verify isolation",
			"Work in worktree",
			"Merge back",
		},
	},
	"subagent-driven-development": {
		Name:        "subagent-driven-development",
		Description: "Dispatch fresh subagent per task with review between tasks",
		WhenToUse:   "When executing implementation plans in current session",
		KeySteps: []string{
			"Load plan",
			"Dispatch subagent per task",
			"Review output",
			"Continue or fix",
		},
	},
	"systematic-debugging": {
		Name:        "systematic-debugging",
		Description: "Debug systematically before proposing fixes",
		WhenToUse:   "When encountering any bug, test failure, or unexpected behavior",
		KeySteps: []string{
			"Reproduce the issue",
			"Form hypothesis",
			"Test hypothesis",
			"Fix root cause",
		},
	},
	"verification-before-completion": {
		Name:        "verification-before-completion",
		Description: "Run verification commands before claiming work is complete",
		WhenToUse:   "Before committing or creating PRs",
		KeySteps: []string{
			"Run tests",
			"Check linting",
			"Verify build",
			"Confirm output",
		},
	},
	"finishing-a-development-branch": {
		Name:        "finishing-a-development-branch",
		Description: "Guide completion of development work with structured options",
		WhenToUse:   "When implementation is complete and all tests pass",
		KeySteps: []string{
			"Verify all tests pass",
			"Choose merge strategy",
			"Create PR or merge",
			"Clean up",
		},
	},
	"requesting-code-review": {
		Name:        "requesting-code-review",
		Description: "Request code review to verify work meets requirements",
		WhenToUse:   "When completing tasks or before merging",
		KeySteps: []string{
			"Summarize changes",
			"Highlight concerns",
			"Request specific feedback",
			"Address feedback",
		},
	},
	"receiving-code-review": {
		Name:        "receiving-code-review",
		Description: "Handle code review feedback with technical rigor",
		WhenToUse:   "When receiving feedback, especially if unclear or questionable",
		KeySteps: []string{
			"Understand feedback",
			"Verify claims",
			"Implement valid suggestions",
			"Push back if needed",
		},
	},
}

// SkillsForPhase returns the ordered skill details recommended for a phase.
// An unknown phase yields an empty slice, and a mapped name missing from the
// detail table is skipped rather than treated as an error.
func SkillsForPhase(phase models.Phase) []Skill {
	names := phaseSkills[phase]
	skills := make([]Skill, 0, len(names))
	for _, name := range names {
		if detail, ok := skillDetails[name]; ok {
			skills = append(skills, detail)
		}
	}
	return skills
}

// SkillNamesForPhase returns just the ordered skill names for a phase.
func SkillNamesForPhase(phase models.Phase) []string {
	names := phaseSkills[phase]
	out := make([]string, len(names))
	copy(out, names)
	return out
}
