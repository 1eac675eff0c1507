package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/secureaware/internal/certificate"
	"github.com/kingrea/secureaware/internal/training"
)

type certItem struct {
	cert certificate.Certificate
}

func (i certItem) Title() string { return "🏆 " + i.cert.ModuleName }
func (i certItem) Description() string {
	return fmt.Sprintf("%s · issued %s", i.cert.CertificateNumber, certificate.FormatIssueDate(i.cert))
}
func (i certItem) FilterValue() string { return i.cert.ModuleName }

type certificatesView struct {
	svc    *training.Service
	list   list.Model
	search textinput.Model
	detail certificate.Detail
	err    error
}

func newCertificatesView(svc *training.Service) *certificatesView {
	search := textinput.New()
	search.Placeholder = "Search certificates"
	search.Prompt = "/ "
	search.CharLimit = 64
	v := &certificatesView{
		svc:    svc,
		list:   newList("Certificates", nil),
		search: search,
	}
	v.refresh()
	return v
}

func (v *certificatesView) setSize(w, h int) {
	v.list.SetSize(w, max(0, h-2))
}

func (v *certificatesView) searching() bool {
	return v.search.Focused()
}

func (v *certificatesView) stopSearch() {
	v.search.Blur()
}

func (v *certificatesView) refresh() {
	certs := v.svc.Certificates(v.search.Value())
	items := make([]list.Item, len(certs))
	for i, c := range certs {
		items[i] = certItem{cert: c}
	}
	v.list.SetItems(items)
	v.list.Title = fmt.Sprintf("Certificates (%d)", len(items))
}

// Update handles both the list and the detail screen. It reports whether the
// detail screen should be shown afterwards.
func (v *certificatesView) Update(msg tea.Msg, detail bool, exportDir string) (bool, tea.Cmd) {
	k, isKey := msg.(tea.KeyMsg)
	if detail {
		if isKey && k.String() == "e" {
			return true, v.export(exportDir)
		}
		return true, nil
	}
	if v.searching() {
		if isKey && k.String() == "enter" {
			v.search.Blur()
			return false, nil
		}
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		v.refresh()
		return false, cmd
	}
	if isKey {
		switch k.String() {
		case "/":
			return false, v.search.Focus()
		case "enter":
			item, ok := v.list.SelectedItem().(certItem)
			if !ok {
				return false, nil
			}
			v.show(item.cert.ID)
			return true, nil
		}
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return false, cmd
}

// show loads the detail; a lookup failure leaves an empty detail behind.
func (v *certificatesView) show(id string) {
	v.detail, v.err = v.svc.Certificate(id)
	if v.err != nil {
		v.detail = certificate.Detail{}
	}
}

func (v *certificatesView) export(dir string) tea.Cmd {
	if v.err != nil || v.detail.Certificate.ID == "" {
		return nil
	}
	svc, id := v.svc, v.detail.Certificate.ID
	return func() tea.Msg {
		path, err := svc.ExportCertificateFile(id, dir)
		if err != nil {
			return statusMsg("Export failed: " + err.Error())
		}
		return statusMsg(exportedStatus(path))
	}
}

func (v *certificatesView) View() string {
	parts := []string{}
	if v.searching() || v.search.Value() != "" {
		parts = append(parts, v.search.View())
	}
	if len(v.list.Items()) == 0 {
		empty := "Complete a training module to earn your first certificate."
		if v.search.Value() != "" {
			empty = "No certificates match your search."
		}
		parts = append(parts, v.list.Title, "", empty)
	} else {
		parts = append(parts, v.list.View())
	}
	parts = append(parts, lipgloss.NewStyle().Foreground(mutedColor).Render("/ → search    Enter → view"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *certificatesView) detailView() string {
	if v.err != nil || v.detail.Certificate.ID == "" {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("Certificate not found.")
	}
	d := v.detail
	center := lipgloss.NewStyle().Width(60).Align(lipgloss.Center)
	lines := []string{
		center.Bold(true).Foreground(accentColor).Render("CERTIFICATE OF COMPLETION"),
		"",
		center.Render("This is to certify that"),
		center.Bold(true).Render(d.Recipient.Name),
		center.Foreground(mutedColor).Render(fmt.Sprintf("%s · %s", d.Recipient.Role, d.Recipient.Department)),
		"",
		center.Render("has successfully completed"),
		center.Bold(true).Foreground(goodColor).Render(d.Certificate.ModuleName),
		"",
		center.Render(fmt.Sprintf("Level %s · %d minutes", d.Module.Level, d.Module.Duration)),
		center.Render("Issued " + certificate.FormatIssueDate(d.Certificate)),
		center.Foreground(mutedColor).Render("Certificate No. " + d.Certificate.CertificateNumber),
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(accentColor).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	hint := lipgloss.NewStyle().Foreground(mutedColor).Render("e → export PDF    Esc → back")
	return lipgloss.JoinVertical(lipgloss.Left, box, "", hint)
}
