// Package ui implements the SnapShop terminal client on Bubble Tea.
//
// # Screens
//
// The root Model owns a nav.Table with two screens:
//
//   - "/" submission screen: a file picker restricted to image extensions,
//     an upload key and a spinner. Its state machine is
//     idle -> validating -> submitting -> done | failed.
//   - "/results" results screen: one card per item with title, link and
//     local timestamp. Its source is provided (payload from an upload),
//     pending, loaded (one list call) or errored.
//
// A successful upload navigates to "/results" carrying the items, so the
// results screen renders them without calling the backend. Entering
// "/results" any other way (the r key, --path /results, reload) issues
// exactly one list call for that screen instance.
//
// # Event Loop
//
// All state changes happen in Update. Backend calls run as tea.Cmd closures
// and report back with messages tagged by the id of the screen instance that
// issued them. The root model drops messages whose id does not match the
// current screen, so a response arriving after navigation is ignored.
//
// # Keys
//
//	s / ctrl+s   upload the chosen image
//	r            latest results (submission) / reload (results)
//	j/k g/G      move between result cards
//	enter / o    open the selected link in the system browser
//	y            copy the selected link
//	b / esc      back to a new search
//	T            cycle theme
//	?            help
//	q / ctrl+c   quit
//
// Link actions run off the event loop. Their failures show as a short hint in
// the header and are logged; they never replace the results.
package ui
