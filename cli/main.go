package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Model defines the application state
type Model struct {
	mainMenu     list.Model
	tablesView   table.Model
	lowStockView table.Model
	orderList    list.Model
	orderDetail  Order
	emailInput   textinput.Model
	passInput    textinput.Model
	spinner      spinner.Model
	client       *ApiClient
	currentView  string
	loggingIn    bool
	error        string
}

// item represents a main menu entry
type item struct {
	title, desc string
}

func (i item) FilterValue() string { return i.title }
func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }

// orderItem represents one order in the order list
type orderItem struct {
	id     uint
	number string
	status string
	total  float64
}

func (o orderItem) FilterValue() string { return o.number }
func (o orderItem) Title() string {
	return fmt.Sprintf("#%.8s  %s", o.number, o.status)
}
func (o orderItem) Description() string {
	return fmt.Sprintf("total %.2f", o.total)
}

// Messages

type loginMsg struct{}
type tablesMsg struct{ tables []Table }
type ordersMsg struct{ orders []Order }
type orderDetailMsg struct{ order Order }
type lowStockMsg struct{ items []LowStockItem }
type errorMsg struct{ err string }

// Commands

func doLogin(client *ApiClient, email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := client.Login(email, password); err != nil {
			return errorMsg{err.Error()}
		}
		return loginMsg{}
	}
}

func fetchTables(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		tables, err := client.ListTables()
		if err != nil {
			return errorMsg{err.Error()}
		}
		return tablesMsg{tables}
	}
}

func fetchOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.ListOrders("")
		if err != nil {
			return errorMsg{err.Error()}
		}
		return ordersMsg{orders}
	}
}

func fetchOrderDetail(client *ApiClient, id uint) tea.Cmd {
	return func() tea.Msg {
		order, err := client.GetOrder(id)
		if err != nil {
			return errorMsg{err.Error()}
		}
		return orderDetailMsg{*order}
	}
}

func advanceOrder(client *ApiClient, order Order) tea.Cmd {
	return func() tea.Msg {
		next := nextStatus(order.Status)
		if next == "" {
			return errorMsg{fmt.Sprintf("order is %s; nothing to advance", order.Status)}
		}
		updated, err := client.SetOrderStatus(order.ID, next)
		if err != nil {
			return errorMsg{err.Error()}
		}
		return orderDetailMsg{*updated}
	}
}

func cancelOrder(client *ApiClient, order Order) tea.Cmd {
	return func() tea.Msg {
		updated, err := client.SetOrderStatus(order.ID, "cancelled")
		if err != nil {
			return errorMsg{err.Error()}
		}
		return orderDetailMsg{*updated}
	}
}

func fetchLowStock(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		items, err := client.ListLowStock()
		if err != nil {
			return errorMsg{err.Error()}
		}
		return lowStockMsg{items}
	}
}

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Tables", desc: "View table occupancy"},
		item{title: "Orders", desc: "Browse and advance orders"},
		item{title: "Low Stock", desc: "Ingredients at or below minimum"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "mesob"

	tablesView := table.New(
		table.WithColumns([]table.Column{
			{Title: "Table", Width: 12},
			{Title: "Capacity", Width: 10},
			{Title: "Status", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	lowStockView := table.New(
		table.WithColumns([]table.Column{
			{Title: "Ingredient", Width: 24},
			{Title: "Stock", Width: 10},
			{Title: "Minimum", Width: 10},
			{Title: "Shortage", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	orderList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	orderList.Title = "Orders"

	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.Focus()
	emailInput.Width = 40

	passInput := textinput.New()
	passInput.Placeholder = "password"
	passInput.EchoMode = textinput.EchoPassword
	passInput.Width = 40

	return Model{
		mainMenu:     mainMenu,
		tablesView:   tablesView,
		lowStockView: lowStockView,
		orderList:    orderList,
		emailInput:   emailInput,
		passInput:    passInput,
		spinner:      s,
		client:       NewApiClient(),
		currentView:  "login",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
		m.orderList.SetSize(msg.Width-h, msg.Height-v)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != "login" {
				return m, tea.Quit
			}
		case "tab":
			if m.currentView == "login" {
				if m.emailInput.Focused() {
					m.emailInput.Blur()
					m.passInput.Focus()
				} else {
					m.passInput.Blur()
					m.emailInput.Focus()
				}
				return m, nil
			}
		case "enter":
			switch m.currentView {
			case "login":
				if m.emailInput.Focused() {
					m.emailInput.Blur()
					m.passInput.Focus()
					return m, nil
				}
				m.loggingIn = true
				m.error = ""
				return m, doLogin(m.client, m.emailInput.Value(), m.passInput.Value())
			case "main":
				if selected, ok := m.mainMenu.SelectedItem().(item); ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Tables":
						m.currentView = "tables"
						return m, fetchTables(m.client)
					case "Orders":
						m.currentView = "orders"
						return m, fetchOrders(m.client)
					case "Low Stock":
						m.currentView = "lowstock"
						return m, fetchLowStock(m.client)
					}
				}
			case "orders":
				if selected, ok := m.orderList.SelectedItem().(orderItem); ok {
					m.currentView = "order_detail"
					return m, fetchOrderDetail(m.client, selected.id)
				}
			case "order_detail":
				m.currentView = "orders"
				return m, fetchOrders(m.client)
			}
		case "esc":
			switch m.currentView {
			case "order_detail":
				m.currentView = "orders"
				return m, fetchOrders(m.client)
			case "tables", "orders", "lowstock":
				m.currentView = "main"
				m.error = ""
			}
		case "r":
			switch m.currentView {
			case "tables":
				return m, fetchTables(m.client)
			case "orders":
				return m, fetchOrders(m.client)
			case "lowstock":
				return m, fetchLowStock(m.client)
			}
		case "a":
			if m.currentView == "order_detail" {
				return m, advanceOrder(m.client, m.orderDetail)
			}
		case "c":
			if m.currentView == "order_detail" {
				return m, cancelOrder(m.client, m.orderDetail)
			}
		}

	case loginMsg:
		m.loggingIn = false
		m.error = ""
		m.currentView = "main"
		return m, nil

	case tablesMsg:
		rows := make([]table.Row, 0, len(msg.tables))
		for _, t := range msg.tables {
			rows = append(rows, table.Row{t.Name, fmt.Sprintf("%d", t.Capacity), t.Status})
		}
		m.tablesView.SetRows(rows)
		return m, nil

	case ordersMsg:
		items := make([]list.Item, 0, len(msg.orders))
		for _, o := range msg.orders {
			items = append(items, orderItem{id: o.ID, number: o.Number, status: o.Status, total: o.Total})
		}
		m.orderList.SetItems(items)
		return m, nil

	case orderDetailMsg:
		m.orderDetail = msg.order
		m.error = ""
		return m, nil

	case lowStockMsg:
		rows := make([]table.Row, 0, len(msg.items))
		for _, it := range msg.items {
			rows = append(rows, table.Row{
				it.Ingredient.Name,
				fmt.Sprintf("%.2f", it.Ingredient.CurrentStock),
				fmt.Sprintf("%.2f", it.Ingredient.MinStock),
				fmt.Sprintf("%.2f", it.Shortage),
			})
		}
		m.lowStockView.SetRows(rows)
		return m, nil

	case errorMsg:
		m.loggingIn = false
		m.error = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "login":
		if m.emailInput.Focused() {
			m.emailInput, cmd = m.emailInput.Update(msg)
		} else {
			m.passInput, cmd = m.passInput.Update(msg)
		}
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "tables":
		m.tablesView, cmd = m.tablesView.Update(msg)
	case "orders":
		m.orderList, cmd = m.orderList.Update(msg)
	case "lowstock":
		m.lowStockView, cmd = m.lowStockView.Update(msg)
	}
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	var body string

	switch m.currentView {
	case "login":
		status := ""
		if m.loggingIn {
			status = m.spinner.View() + " logging in..."
		}
		body = titleStyle.Render("mesob login") + "\n\n" +
			m.emailInput.View() + "\n" +
			m.passInput.View() + "\n\n" +
			status + "\n" +
			helpStyle.Render("tab: switch field • enter: submit • ctrl+c: quit")
	case "main":
		body = m.mainMenu.View()
	case "tables":
		body = titleStyle.Render("Tables") + "\n\n" + m.tablesView.View() + "\n" +
			helpStyle.Render("r: refresh • esc: back • q: quit")
	case "orders":
		body = m.orderList.View() + "\n" +
			helpStyle.Render("enter: detail • r: refresh • esc: back")
	case "order_detail":
		body = m.renderOrderDetail()
	case "lowstock":
		body = titleStyle.Render("Low Stock") + "\n\n" + m.lowStockView.View() + "\n" +
			helpStyle.Render("r: refresh • esc: back • q: quit")
	}

	if m.error != "" {
		body += "\n\n" + errorStyle.Render(m.error)
	}
	return docStyle.Render(body)
}

func (m Model) renderOrderDetail() string {
	o := m.orderDetail
	out := titleStyle.Render(fmt.Sprintf("Order #%.8s", o.Number)) + "\n\n"
	out += fmt.Sprintf("status: %s   payment: %s\n\n", o.Status, o.PaymentStatus)
	for _, line := range o.Items {
		out += fmt.Sprintf("  %dx item %d @ %.2f\n", line.Quantity, line.MenuItemID, line.UnitPrice)
	}
	out += fmt.Sprintf("\nsubtotal %.2f   tax %.2f   discount %.2f   total %.2f\n",
		o.Subtotal, o.Tax, o.Discount, o.Total)
	out += "\n" + helpStyle.Render("a: advance status • c: cancel • esc: back")
	return out
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
