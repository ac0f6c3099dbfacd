package wizard

import (
	"fmt"
	"strings"
)

func planSystemPrompt(lang string) string {
	return fmt.Sprintf(`You are an expert BeagleBoard and embedded %[1]s engineer & project planner.
Your task: produce a precise, implementation-focused phased execution plan.
RULES:
1. Output ONLY valid JSON (no markdown, no commentary outside JSON).
2. JSON shape: { summary, phases, next_actions, risk_notes }.
3. phases: [ { title, objective, tasks, deliverables, resources, dependencies, prompts } ]. 3-6 phases typical.
4. tasks: [{ title, detail, est_hours, code? }]. Each task est_hours 1-6 unless strongly justified.
5. code (OPTIONAL) is a concise %[1]s snippet (<= 60 lines, <= 1200 chars) showing key logic (initialization, driver usage, IO loop, optimization pattern, etc.). Omit if trivial.
6. Use ONLY facts from retrieved context plus standard BeagleBoard knowledge. For assumptions use prefix 'Assumption:' in detail.
7. Avoid placeholders like TODO; show realistic function names & minimal scaffolding.
8. Keep resources and prompts directly actionable.
9. Summary must mention if context was sparse.
10. No duplicate phases or tasks.
11. dependencies list the titles of earlier phases only.`, lang)
}

func planUserPrompt(req Request, contextBlock string) string {
	return fmt.Sprintf("GOALS: %s\nHARDWARE: %s\nEXPERIENCE: %s\nFOCUS: %s\nLANGUAGE: %s\n%s",
		req.Goals, req.Hardware, req.Experience, req.focus(), req.language(), contextBlock)
}

const commandSystemPrompt = "Return ONLY raw JSON. Never add commentary. Focus only on the current task; do not propose next-step commands."

func commandUserPrompt(req CommandRequest) string {
	lang := req.language()
	return strings.Join([]string{
		"You are an expert embedded engineer for BeagleBoard.",
		"IMPORTANT: Focus STRICTLY on the CURRENT TASK described in DETAIL. Do NOT propose commands for subsequent steps.",
		"TASK TITLE: " + req.TaskTitle,
		"DETAIL: " + req.Detail,
		"HARDWARE: " + req.Hardware,
		"LANGUAGE: " + lang,
		"GOALS: " + req.Goals,
		"FOCUS: " + req.Focus,
		"EXPERIENCE: " + req.Experience,
		"",
		"Produce a STRICT JSON object ONLY with shape:",
		fmt.Sprintf(`{"commands":[{"cmd":"shell command","explanation":"short reason"}],"code":"OPTIONAL_%s_snippet_or_empty_string"}`, lang),
		"Rules:",
		"- 2-8 commands, each minimal, safe, and directly actionable for this task only.",
		"- Do NOT include commands that prepare later tasks or describe multi-step plans.",
		"- Prefer standard Linux tooling (apt, git, make) & BeagleBoard context.",
		"- Avoid destructive operations (no rm -rf *, no mkfs, no dd to block devices, no sudo unless essential).",
		"- code snippet <= 80 lines, show key logic only, may be empty string if not useful.",
		"- NO text outside JSON.",
		`If the task cannot be accomplished safely, return { "commands": [], "code": "" }.`,
	}, "\n")
}
