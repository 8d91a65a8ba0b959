package ui

import "strings"

// command is one hint in the command bar.
type command struct{ key, desc string }

// renderHeader renders the title bar: product name, current path and, when
// the screen reports one, its status.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("SnapShop", styles.Logo),
		bg.Render(m.path, styles.AccentText),
	}
	if m.current != nil {
		if status := m.current.Status(); status != "" {
			parts = append(parts, bg.Render(status, styles.MutedText))
		}
	}

	return styles.Header.Width(m.width).MaxWidth(m.width).Render(strings.Join(parts, sep))
}

// renderCommandBar renders the key hints for the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var commands []command
	if m.current != nil {
		commands = append(commands, m.current.Commands()...)
	}
	commands = append(commands, command{"?", "More"}, command{"q", "Quit"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.width == 0 || m.width >= LayoutCompactWidth {
		segments = append(segments,
			bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	}

	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(strings.Join(segments, sep))
}
