package wizard

import "fmt"

var baseResources = []string{
	"Official BeagleBoard docs",
	"Hardware reference manual",
	"Linux device tree docs",
	"BeagleBoard forum threads",
	"GPIO & peripheral examples",
}

func withResources(extra ...string) []string {
	out := make([]string, 0, len(baseResources)+len(extra))
	out = append(out, baseResources...)
	return append(out, extra...)
}

// HeuristicPlan builds the fixed four-phase template for req. It performs no I/O and is
// deterministic apart from the ids newID mints.
func HeuristicPlan(req Request, newID IDFunc) *Plan {
	if newID == nil {
		newID = NewID
	}
	task := func(title, detail string, hours float64) Task {
		return Task{ID: newID("task"), Title: title, Detail: detail, EstHours: hours}
	}

	var phases []Phase

	phases = append(phases, Phase{
		ID:        newID("phase"),
		Title:     "Environment & Hardware Validation",
		Objective: fmt.Sprintf("Validate %s board, flashing, connectivity, and baseline performance", req.Hardware),
		Tasks: []Task{
			task("Flash / Update Image", "Download latest image, verify checksum, flash to SD/eMMC", 2),
			task("Boot & Serial Console", "Establish serial and SSH access, capture boot logs", 1.5),
			task("I/O Smoke Test", "Test LEDs, one GPIO, network, and storage", 2),
		},
		Deliverables: []string{"Boot log", "Flashed image notes", "Initial validation checklist"},
		Resources:    withResources(),
		Dependencies: []string{},
		Prompts: []string{
			"Explain the boot sequence of my BeagleBoard variant",
			"What are common boot issues and how to diagnose them?",
			"Generate a checklist for validating fresh board setup",
		},
	})

	phases = append(phases, Phase{
		ID:        newID("phase"),
		Title:     "Core Feature Framing",
		Objective: "Break down primary goal: " + req.Goals,
		Tasks: []Task{
			task("Decompose Goal", "List required subsystems (I/O, drivers, libs, protocols)", 2),
			task("Select Libraries", "Choose userspace vs kernel approach, dependencies", 1.5),
			task("Create Architecture Sketch", "High-level block diagram & data flow", 2),
		},
		Deliverables: []string{"Subsystem list", "Architecture diagram", "Dependency matrix"},
		Resources:    withResources("Block diagram tooling", "Relevant protocol specs"),
		Dependencies: []string{phases[0].ID},
		Prompts: []string{
			"Given the goal \"" + req.Goals + "\", list the hardware subsystems involved",
			"Suggest tradeoffs between Python vs C for this feature on BeagleBoard",
			"Provide a sample data flow for the core pipeline",
		},
	})

	phases = append(phases, Phase{
		ID:        newID("phase"),
		Title:     "Implementation Sprint 1",
		Objective: "Establish minimal viable pipeline / driver interaction",
		Tasks: []Task{
			task("Prototype GPIO / Peripheral Access", "Implement basic access routines & test harness", 3),
			task("Logging & Telemetry", "Add structured logging for timing & errors", 2),
			task("Baseline Performance Metrics", "Capture latency, throughput, and CPU use", 2),
		},
		Deliverables: []string{"Prototype code", "Test harness", "Performance baseline report"},
		Resources:    withResources("Perf measurement tools (perf, trace-cmd)"),
		Dependencies: []string{phases[1].ID},
		Prompts: []string{
			"Generate a minimal GPIO read/write example with timing capture",
			"How to measure latency for my data pipeline on BeagleBoard?",
			"Suggest logging structure for embedded diagnostics",
		},
	})

	phases = append(phases, Phase{
		ID:        newID("phase"),
		Title:     "Risk & Optimization",
		Objective: "Identify bottlenecks, thermal/power constraints, and failure modes",
		Tasks: []Task{
			task("Thermal / Power Check", "Monitor temps & consumption under load", 2),
			task("Error Injection Tests", "Simulate disconnects, corrupt input, edge signal timing", 3),
			task("Optimize Critical Path", "Profile and tune hotspots (interrupt latency, I/O)", 3),
		},
		Deliverables: []string{"Risk register", "Optimization log", "Thermal/power report"},
		Resources:    withResources("Thermal monitoring tools", "Power measurement tools"),
		Dependencies: []string{phases[2].ID},
		Prompts: []string{
			"List common performance bottlenecks for BeagleBoard hardware apps",
			"Generate a risk table for my project with severity/mitigation",
			"Provide methods for measuring GPIO toggle latency",
		},
	})

	switch req.Experience {
	case "beginner":
		for i := range phases {
			phases[i].Tasks = append(phases[i].Tasks,
				task("Documentation Review", "Read and summarize official docs section relevant to this phase", 1))
		}
	case "advanced":
		phases = append(phases, Phase{
			ID:        newID("phase"),
			Title:     "Advanced Enhancement",
			Objective: "Add stretch goals and advanced capabilities",
			Tasks: []Task{
				task("Upstream Contribution", "Prepare patch or documentation improvement", 4),
				task("Instrumentation Layer", "Add tracing/profiling hooks for future scaling", 3),
			},
			Deliverables: []string{"Patch submission", "Instrumentation docs"},
			Resources:    withResources("Kernel contribution guidelines"),
			Dependencies: []string{phases[len(phases)-1].ID},
			Prompts: []string{
				"How to structure a kernel patch description?",
				"Suggest instrumentation points for long-term observability",
			},
		})
	}

	return &Plan{
		Summary: fmt.Sprintf("Generated a phased plan (%d phases) targeting goal: %s. Focus: %s. Experience: %s.",
			len(phases), req.Goals, req.focus(), req.Experience),
		Phases: phases,
		NextActions: []string{
			"Review Phase 1 tasks and adjust estimates",
			"Confirm hardware inventory and tools",
			"Schedule first validation session",
		},
		RiskNotes: []string{
			"Unclear hardware revisions can cause subtle timing differences",
			"Thermal throttling if enclosure airflow is poor",
			"Driver/library version drift over time",
		},
	}
}
