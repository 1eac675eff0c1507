package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/training"
)

var filterCycle = []catalog.CompletionFilter{catalog.FilterAll, catalog.FilterIncomplete, catalog.FilterCompleted}

var iconGlyphs = map[catalog.Icon]string{
	catalog.IconLock:          "🔒",
	catalog.IconAlertTriangle: "⚠",
	catalog.IconEye:           "👁",
	catalog.IconWifi:          "📶",
	catalog.IconMail:          "✉",
	catalog.IconFileText:      "📄",
	catalog.IconShield:        "🛡",
	catalog.IconSmartphone:    "📱",
}

type moduleItem struct {
	mod       catalog.Module
	completed bool
}

func (i moduleItem) Title() string {
	mark := "○"
	if i.completed {
		mark = "✓"
	}
	return fmt.Sprintf("%s %s %s", mark, iconGlyph(i.mod.Icon), i.mod.Title)
}

func (i moduleItem) Description() string {
	return fmt.Sprintf("%s · %d min · %s", i.mod.Level, i.mod.Duration, i.mod.Description)
}

func (i moduleItem) FilterValue() string { return i.mod.Title }

func iconGlyph(icon catalog.Icon) string {
	if g, ok := iconGlyphs[icon]; ok {
		return g
	}
	return iconGlyphs[catalog.IconShield]
}

// modulesView lists modules and renders the one being read.
type modulesView struct {
	svc      *training.Service
	list     list.Model
	search   textinput.Model
	filter   int
	selected catalog.Module
	hasMod   bool
	content  viewport.Model
}

func newModulesView(svc *training.Service) *modulesView {
	search := textinput.New()
	search.Placeholder = "Search modules"
	search.Prompt = "/ "
	search.CharLimit = 64
	v := &modulesView{
		svc:     svc,
		list:    newList("Training Modules", nil),
		search:  search,
		content: viewport.New(80, 20),
	}
	v.refresh()
	return v
}

func (v *modulesView) setSize(w, h int) {
	v.list.SetSize(w, max(0, h-2))
	v.content.Width = w
	v.content.Height = max(5, h-4)
}

func (v *modulesView) searching() bool {
	return v.search.Focused()
}

func (v *modulesView) stopSearch() {
	v.search.Blur()
}

func (v *modulesView) activeFilter() catalog.CompletionFilter {
	return filterCycle[v.filter%len(filterCycle)]
}

// refresh reapplies the search query and completion filter.
func (v *modulesView) refresh() {
	mods := v.svc.Modules(v.search.Value(), v.activeFilter())
	items := make([]list.Item, len(mods))
	for i, mod := range mods {
		items[i] = moduleItem{mod: mod, completed: v.svc.IsCompleted(mod.ID)}
	}
	v.list.SetItems(items)
	v.list.Title = fmt.Sprintf("Training Modules · %s (%d)", v.activeFilter(), len(items))
}

func (v *modulesView) current() (catalog.Module, bool) {
	return v.selected, v.hasMod
}

// Update handles the module list; it reports true when a module was opened.
func (v *modulesView) Update(msg tea.Msg) (bool, tea.Cmd) {
	if v.searching() {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" {
			v.search.Blur()
			return false, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		v.refresh()
		return false, cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "/":
			return false, v.search.Focus()
		case "f":
			v.filter = (v.filter + 1) % len(filterCycle)
			v.refresh()
			return false, nil
		case "enter":
			item, ok := v.list.SelectedItem().(moduleItem)
			if !ok {
				return false, nil
			}
			v.open(item.mod)
			return true, nil
		}
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return false, cmd
}

func (v *modulesView) open(mod catalog.Module) {
	v.selected = mod
	v.hasMod = true
	v.content.SetContent(renderModuleContent(mod, v.svc.IsCompleted(mod.ID)))
	v.content.GotoTop()
}

func (v *modulesView) updateContent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.content, cmd = v.content.Update(msg)
	return cmd
}

func (v *modulesView) View() string {
	hint := lipgloss.NewStyle().Foreground(mutedColor).Render("/ → search    f → filter    Enter → open")
	parts := []string{}
	if v.searching() || v.search.Value() != "" {
		parts = append(parts, v.search.View())
	}
	if len(v.list.Items()) == 0 {
		parts = append(parts, v.list.Title, "", "No modules match your search.")
	} else {
		parts = append(parts, v.list.View())
	}
	parts = append(parts, hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *modulesView) contentView() string {
	hint := lipgloss.NewStyle().Foreground(mutedColor).Render("↑/↓ → scroll    t → take quiz    Esc → back")
	return lipgloss.JoinVertical(lipgloss.Left, v.content.View(), hint)
}

func renderModuleContent(mod catalog.Module, completed bool) string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render(iconGlyph(mod.Icon) + " " + mod.Title)
	b.WriteString(title + "\n")
	status := fmt.Sprintf("%s · %d minutes · %d quiz questions", mod.Level, mod.Duration, len(mod.Quiz))
	if completed {
		status += " · " + lipgloss.NewStyle().Foreground(goodColor).Render("completed")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(status) + "\n\n")
	b.WriteString(mod.Description + "\n")
	for _, section := range mod.Content {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render(section.Title) + "\n")
		for _, item := range section.Items {
			switch item.Type {
			case catalog.ItemTip:
				b.WriteString(lipgloss.NewStyle().Foreground(goodColor).Render("💡 Tip: "+item.Value) + "\n")
			case catalog.ItemImage:
				b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render("[image] "+item.Value) + "\n")
			default:
				b.WriteString(item.Value + "\n")
			}
		}
	}
	return b.String()
}
