package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/liftreport/liftreport/internal/config"
	"github.com/liftreport/liftreport/internal/dashboard"
	"github.com/liftreport/liftreport/internal/logger"
	"github.com/liftreport/liftreport/internal/report"
	"github.com/liftreport/liftreport/internal/stats"
)

// Dashboard template data structures
type layoutData struct {
	Title    string
	CSS      template.CSS
	Content  template.HTML
	Settings settingsData
}

type settingsData struct {
	AverageOrderValue string
	ConfidenceLevel   string
	Levels            []levelOption
	Exported          bool
	ExportPath        string
}

type levelOption struct {
	Value    string
	Label    string
	Selected bool
}

type reportData struct {
	Heading      string
	Observations string
	Metrics      []metricItem

	RateChart    template.HTML
	RevenueChart template.HTML

	Significant  bool
	PValue       string
	PValueDetail string
	ZStatistic   string

	AbsoluteDifference string
	Lift               string
	ConfidencePercent  string
	CILower            string
	CIUpper            string

	Advice adviceData
	Groups []groupRow
	Sample []sampleRow
}

type metricItem struct {
	Label string
	Value string
	Delta string
}

type adviceData struct {
	Class    string
	Headline string
	Detail   string
	Actions  []string
}

type groupRow struct {
	Group          string
	Count          string
	Conversions    string
	ConversionMean string
	PageViewsMean  string
	SessionsMean   string
	Interval       string
}

type sampleRow struct {
	Index     int
	Group     string
	Converted bool
	PageViews string
	Sessions  string
}

type errorData struct {
	Title  string
	Detail string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	opts, err := s.reportOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings := newSettings(opts.Params, s.cfg.ExportPath)
	settings.Exported = r.URL.Query().Get("exported") == "1"

	rep, err := s.buildReport(r.Context(), opts)
	if err != nil {
		s.renderError(w, err, settings)
		return
	}

	data, err := newReportData(rep)
	if err != nil {
		logger.Error("failed to render charts", "error", err)
		http.Error(w, "Failed to render charts", http.StatusInternalServerError)
		return
	}

	s.renderDashboard(w, http.StatusOK, rep.Title(), "report.html", data, settings)
}

// handleDashboardExport saves the current results from the sidebar form and
// returns to the dashboard with the same settings.
func (s *Server) handleDashboardExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts, err := s.reportOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings := newSettings(opts.Params, s.cfg.ExportPath)

	rep, err := s.buildReport(r.Context(), opts)
	if err != nil {
		s.renderError(w, err, settings)
		return
	}

	if err := report.WriteExport(s.cfg.ExportPath, rep.Result.Export()); err != nil {
		logger.Error("export failed", "path", s.cfg.ExportPath, "error", err)
		s.renderError(w, err, settings)
		return
	}
	logger.Info("results exported", "path", s.cfg.ExportPath)

	q := url.Values{}
	q.Set("aov", settings.AverageOrderValue)
	q.Set("confidence", settings.ConfidenceLevel)
	q.Set("exported", "1")
	http.Redirect(w, r, "/dashboard?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) renderError(w http.ResponseWriter, err error, settings settingsData) {
	msg := report.Describe(err, s.cfg.SourcePath())
	status := http.StatusInternalServerError
	if msg.NotFound {
		status = http.StatusNotFound
	}
	logger.Warn("report unavailable", "error", err)
	s.renderDashboard(w, status, "Error", "error.html", errorData{Title: msg.Title, Detail: msg.Detail}, settings)
}

func newSettings(params stats.Params, exportPath string) settingsData {
	levels := make([]levelOption, len(config.ConfidenceLevels))
	for i, level := range config.ConfidenceLevels {
		levels[i] = levelOption{
			Value:    formatFloat(level),
			Label:    fmt.Sprintf("%.0f%%", level*100),
			Selected: level == params.ConfidenceLevel,
		}
	}

	return settingsData{
		AverageOrderValue: formatFloat(params.AverageOrderValue),
		ConfidenceLevel:   formatFloat(params.ConfidenceLevel),
		Levels:            levels,
		ExportPath:        exportPath,
	}
}

func newReportData(rep *report.Report) (reportData, error) {
	rateSVG, err := report.RateChartSVG(rep)
	if err != nil {
		return reportData{}, err
	}
	revenueSVG, err := report.RevenueChartSVG(rep)
	if err != nil {
		return reportData{}, err
	}

	res := rep.Result
	a, b := report.Label(res.GroupA.Label), report.Label(res.GroupB.Label)

	data := reportData{
		Heading:      rep.Title(),
		Observations: report.Count(rep.Observations),
		Metrics: []metricItem{
			{Label: a + " CR", Value: report.Percent(res.GroupA.Rate), Delta: report.Count(res.GroupA.N) + " users"},
			{Label: b + " CR", Value: report.Percent(res.GroupB.Rate), Delta: report.Count(res.GroupB.N) + " users"},
			{Label: a + " Lift", Value: fmt.Sprintf("%.1f%%", res.Impact.Lift*100), Delta: report.Points(res.Impact.AbsoluteDifference)},
			{Label: "Annual Opportunity", Value: report.Money(res.Impact.AnnualOpportunity), Delta: fmt.Sprintf("p=%.3f", res.Test.PValue)},
		},
		RateChart:          template.HTML(rateSVG),
		RevenueChart:       template.HTML(revenueSVG),
		Significant:        res.Significant(),
		PValue:             fmt.Sprintf("%.3f", res.Test.PValue),
		PValueDetail:       fmt.Sprintf("%.4f", res.Test.PValue),
		ZStatistic:         fmt.Sprintf("%.3f", res.Test.ZStatistic),
		AbsoluteDifference: report.Points(res.Impact.AbsoluteDifference),
		Lift:               fmt.Sprintf("%.1f%%", res.Impact.Lift*100),
		ConfidencePercent:  fmt.Sprintf("%.0f%%", res.Params.ConfidenceLevel*100),
		CILower:            report.Points(res.CILower),
		CIUpper:            report.Points(res.CIUpper),
		Advice: adviceData{
			Class:    adviceClass(rep.Advice.Level),
			Headline: rep.Advice.Headline,
			Detail:   rep.Advice.Detail,
			Actions:  rep.Advice.Actions,
		},
	}

	for _, agg := range rep.Aggregates {
		lower, upper := stats.WilsonInterval(agg.Conversions, agg.Count, res.Params.ConfidenceLevel)
		data.Groups = append(data.Groups, groupRow{
			Group:          agg.Group,
			Count:          report.Count(agg.Count),
			Conversions:    report.Count(agg.Conversions),
			ConversionMean: fmt.Sprintf("%.4f", agg.ConversionMean),
			PageViewsMean:  report.Mean(agg.PageViewsMean),
			SessionsMean:   report.Mean(agg.SessionsMean),
			Interval:       fmt.Sprintf("[%s, %s]", report.Percent(lower), report.Percent(upper)),
		})
	}

	for i, o := range rep.Sample {
		row := sampleRow{Index: i + 1, Group: o.Group, Converted: o.Converted, PageViews: "-", Sessions: "-"}
		if o.HasPageViews {
			row.PageViews = formatFloat(o.PageViews)
		}
		if o.HasSessions {
			row.Sessions = formatFloat(o.Sessions)
		}
		data.Sample = append(data.Sample, row)
	}

	return data, nil
}

func adviceClass(level stats.Recommendation) string {
	switch level {
	case stats.RecommendStrong:
		return "success"
	case stats.RecommendModerate:
		return "warning"
	default:
		return "info"
	}
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, title, contentTemplate string, data interface{}, settings settingsData) {
	// Load CSS
	cssBytes, err := dashboard.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	// Load and execute content template
	contentTmpl, err := template.ParseFS(dashboard.Templates, "templates/"+contentTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render template: %v", err), http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := template.ParseFS(dashboard.Templates, "templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	err = layoutTmpl.Execute(&page, layoutData{
		Title:    title,
		CSS:      template.CSS(cssBytes),
		Content:  template.HTML(contentBuf.String()),
		Settings: settings,
	})
	if err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page.WriteTo(w)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
