// Package timeline defines the career-journey data model consumed by the
// layout engine.
//
// # Overview
//
// A user's journey is a forest of milestones: jobs, education and career
// transitions at the top, each optionally owning projects, events and actions.
// The persistence layer hands these over as flat [Record] values (or grouped
// in [Collections]); the normalizer in [timeline/transform] turns them into a
// forest of [Node] values that the compiler walks.
//
// # Categories
//
// [Category] is a closed set. Legacy records often carry no type, so
// [InferCategory] sniffs the payload fields in a fixed precedence:
//
//	degree         → education
//	company        → job
//	technologies   → project
//	eventType      → event
//	category       → action
//	transitionType → careerTransition
//
// An explicit, valid type always wins and the default is job. Inference runs
// once at ingestion so that downstream code only ever sees a [Category].
//
// # Dates
//
// Milestone spans use partial dates: "2021", "2021-06", "2021-06-14" or an
// RFC 3339 timestamp. [ParseDate] never fails loudly; unparseable values are
// simply reported as unknown so that they sort last.
//
// [timeline/transform]: github.com/journeyline/journeyline/pkg/timeline/transform
package timeline
