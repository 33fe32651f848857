package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/audit"
	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/exporters"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/tasks"
	"github.com/mrlokans/bookoutlet/internal/validators"
)

type modelInfo struct {
	Key        string // form id and admin log object type
	Name       string
	Plural     string
	URL        string
	ObjectType string
}

type breadcrumb struct {
	Label string
	URL   string
}

type listRow struct {
	URL   string
	Cells []string
}

type filterOption struct {
	Label    string
	URL      string
	Selected bool
}

type filterGroup struct {
	Title   string
	Options []filterOption
}

type listAction struct {
	Label string
	URL   string
}

type listPage struct {
	Columns []string
	Rows    []listRow
	Filters []filterGroup
	Actions []listAction
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type formField struct {
	Name            string
	Label           string
	Type            string // text, number, checkbox, select, multiselect
	Value           string
	Checked         bool
	Options         []selectOption
	Error           string
	MaxLength       int
	Required        bool
	Help            string
	PrepopulateFrom string
}

type deletedObject struct {
	Label    string
	Children []deletedObject
}

// adminObject is a stored record as the admin sees it.
type adminObject struct {
	ID      uint
	Repr    string
	ViewURL string
	Values  url.Values
}

type deletionSummary struct {
	Repr    string
	Objects []deletedObject
	Links   []string
}

// adminResource adapts one catalog model to the generic admin pages.
type adminResource interface {
	info() modelInfo
	list(c *gin.Context) (*listPage, error)
	get(id uint) (*adminObject, error)
	// fields builds the form for id (0 when adding) from raw values.
	fields(id uint, values url.Values, errs validators.FieldErrors) ([]formField, error)
	// save returns validators.FieldErrors when the form is invalid.
	save(user *entities.User, id uint, form url.Values) (*adminObject, error)
	deletion(id uint) (*deletionSummary, error)
	remove(user *entities.User, id uint) error
}

// AdminController serves the catalog administration site under /admin/.
type AdminController struct {
	catalog    *services.CatalogService
	adminLog   *audit.Service
	exporter   *exporters.CatalogExporter
	dispatcher *tasks.Dispatcher
	view       view
	resources  []adminResource
}

func NewAdminController(catalog *services.CatalogService, adminLog *audit.Service, exporter *exporters.CatalogExporter, dispatcher *tasks.Dispatcher, v view) *AdminController {
	return &AdminController{
		catalog:    catalog,
		adminLog:   adminLog,
		exporter:   exporter,
		dispatcher: dispatcher,
		view:       v,
		resources: []adminResource{
			&bookResource{catalog: catalog},
			&authorResource{catalog: catalog},
			&addressResource{catalog: catalog},
			&countryResource{catalog: catalog},
		},
	}
}

// RegisterRoutes mounts the admin pages on a group rooted at /admin.
func (ac *AdminController) RegisterRoutes(group gin.IRouter) {
	group.GET("/", ac.Index)
	group.GET("/export.csv", ac.ExportCSV)
	group.POST("/books/regenerate-slugs/", ac.RegenerateSlugs)

	for _, res := range ac.resources {
		prefix := "/" + path(res.info())
		group.GET(prefix+"/", ac.list(res))
		group.GET(prefix+"/add/", ac.addForm(res))
		group.POST(prefix+"/add/", ac.submit(res, true))
		group.GET(prefix+"/:id/", ac.redirectToChange(res))
		group.GET(prefix+"/:id/change/", ac.changeForm(res))
		group.POST(prefix+"/:id/change/", ac.submit(res, false))
		group.GET(prefix+"/:id/delete/", ac.confirmDelete(res))
		group.POST(prefix+"/:id/delete/", ac.delete(res))
		group.GET(prefix+"/:id/history/", ac.history(res))
	}
}

// path is the URL segment of a model, e.g. "books".
func path(m modelInfo) string {
	return m.URL[len("/admin/") : len(m.URL)-1]
}

func (ac *AdminController) page(c *gin.Context, title string, crumbs ...breadcrumb) gin.H {
	data := ac.view.data(c, title+" | Book Outlet admin")
	data["Breadcrumbs"] = crumbs
	return data
}

type modelSummary struct {
	Plural string
	URL    string
	Count  int64
}

// Index handles GET /admin/
func (ac *AdminController) Index(c *gin.Context) {
	counts, err := ac.catalog.Counts()
	if err != nil {
		ac.view.serverError(c, err, "admin counts")
		return
	}
	recent, err := ac.adminLog.Recent(audit.RecentLimit)
	if err != nil {
		ac.view.serverError(c, err, "recent actions")
		return
	}

	data := ac.page(c, "Site administration")
	data["Models"] = []modelSummary{
		{Plural: addressModel.Plural, URL: addressModel.URL, Count: counts.Addresses},
		{Plural: authorModel.Plural, URL: authorModel.URL, Count: counts.Authors},
		{Plural: bookModel.Plural, URL: bookModel.URL, Count: counts.Books},
		{Plural: countryModel.Plural, URL: countryModel.URL, Count: counts.Countries},
	}
	data["RecentActions"] = recent
	c.HTML(http.StatusOK, "admin_index", data)
}

// ExportCSV handles GET /admin/export.csv
func (ac *AdminController) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="catalog.csv"`)
	c.Status(http.StatusOK)
	if err := ac.exporter.WriteCSV(c.Writer); err != nil {
		log.Printf("Failed to export catalog: %v", err)
	}
}

// RegenerateSlugs handles POST /admin/books/regenerate-slugs/
func (ac *AdminController) RegenerateSlugs(c *gin.Context) {
	id, err := ac.dispatcher.Dispatch(c.Request.Context(), tasks.RegenerateSlugsTask{})
	switch {
	case err != nil:
		log.Printf("Failed to regenerate slugs: %v", err)
		ac.view.flash(c, "Slug regeneration failed.")
	case id == "":
		ac.view.flash(c, "Missing slugs were regenerated.")
	default:
		ac.view.flash(c, "Slug regeneration was queued.")
	}
	c.Redirect(http.StatusFound, bookModel.URL)
}

func (ac *AdminController) list(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := res.info()
		page, err := res.list(c)
		if err != nil {
			ac.view.serverError(c, err, "admin list "+m.Key)
			return
		}

		data := ac.page(c, "Select "+m.Name+" to change", breadcrumb{Label: m.Plural})
		data["Model"] = m
		data["Columns"] = page.Columns
		data["Rows"] = page.Rows
		data["Filters"] = page.Filters
		data["Actions"] = page.Actions
		c.HTML(http.StatusOK, "admin_list", data)
	}
}

func (ac *AdminController) addForm(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := res.fields(0, url.Values{}, nil)
		if err != nil {
			ac.view.serverError(c, err, "admin add form")
			return
		}
		ac.renderForm(c, http.StatusOK, res, &adminObject{}, fields, nil)
	}
}

func (ac *AdminController) changeForm(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj, ok := ac.load(c, res)
		if !ok {
			return
		}
		fields, err := res.fields(obj.ID, obj.Values, nil)
		if err != nil {
			ac.view.serverError(c, err, "admin change form")
			return
		}
		ac.renderForm(c, http.StatusOK, res, obj, fields, nil)
	}
}

func (ac *AdminController) renderForm(c *gin.Context, status int, res adminResource, obj *adminObject, fields []formField, errs validators.FieldErrors) {
	m := res.info()
	isNew := obj.ID == 0

	title := "Add " + m.Name
	action := m.URL + "add/"
	crumbs := []breadcrumb{{Label: m.Plural, URL: m.URL}, {Label: title}}
	if !isNew {
		title = "Change " + m.Name
		action = fmt.Sprintf("%s%d/change/", m.URL, obj.ID)
		crumbs[1] = breadcrumb{Label: obj.Repr}
	}

	data := ac.page(c, title, crumbs...)
	data["Model"] = m
	data["IsNew"] = isNew
	data["ObjectID"] = obj.ID
	data["ObjectRepr"] = obj.Repr
	data["ViewURL"] = obj.ViewURL
	data["Action"] = action
	data["Fields"] = fields
	data["Errors"] = errs
	c.HTML(status, "admin_form", data)
}

func (ac *AdminController) submit(res adminResource, isNew bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := res.info()
		var id uint
		current := &adminObject{}
		if !isNew {
			obj, ok := ac.load(c, res)
			if !ok {
				return
			}
			id = obj.ID
			current = obj
		}

		if err := c.Request.ParseForm(); err != nil {
			ac.view.serverError(c, err, "parse admin form")
			return
		}
		form := c.Request.PostForm

		saved, err := res.save(auth.CurrentUser(c), id, form)
		var fieldErrs validators.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			fields, ferr := res.fields(id, form, fieldErrs)
			if ferr != nil {
				ac.view.serverError(c, ferr, "admin form")
				return
			}
			ac.renderForm(c, http.StatusBadRequest, res, current, fields, fieldErrs)
			return
		case errors.Is(err, entities.ErrNotFound):
			ac.view.notFound(c, notFoundMessage(m, id))
			return
		case err != nil:
			ac.view.serverError(c, err, "save "+m.Key)
			return
		}

		verb := "changed"
		if isNew {
			verb = "added"
		}
		msg := fmt.Sprintf("The %s “%s” was %s successfully.", m.Name, saved.Repr, verb)
		target := m.URL
		switch {
		case form.Has("_continue"):
			msg += " You may edit it again below."
			target = fmt.Sprintf("%s%d/change/", m.URL, saved.ID)
		case form.Has("_addanother"):
			msg += fmt.Sprintf(" You may add another %s below.", m.Name)
			target = m.URL + "add/"
		}
		ac.view.flash(c, msg)
		c.Redirect(http.StatusFound, target)
	}
}

func (ac *AdminController) redirectToChange(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			ac.view.notFound(c, "")
			return
		}
		c.Redirect(http.StatusMovedPermanently, fmt.Sprintf("%s%d/change/", res.info().URL, id))
	}
}

func (ac *AdminController) confirmDelete(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := res.info()
		id, ok := parseIDParam(c, "id")
		if !ok {
			ac.view.notFound(c, notFoundMessage(m, 0))
			return
		}
		summary, err := res.deletion(id)
		if errors.Is(err, entities.ErrNotFound) {
			ac.view.notFound(c, notFoundMessage(m, id))
			return
		}
		if err != nil {
			ac.view.serverError(c, err, "delete summary "+m.Key)
			return
		}

		data := ac.page(c, "Are you sure?",
			breadcrumb{Label: m.Plural, URL: m.URL},
			breadcrumb{Label: summary.Repr, URL: fmt.Sprintf("%s%d/change/", m.URL, id)},
			breadcrumb{Label: "Delete"},
		)
		data["Model"] = m
		data["ObjectID"] = id
		data["ObjectRepr"] = summary.Repr
		data["DeletedObjects"] = summary.Objects
		data["RemovedLinks"] = summary.Links
		c.HTML(http.StatusOK, "admin_delete", data)
	}
}

func (ac *AdminController) delete(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := res.info()
		obj, ok := ac.load(c, res)
		if !ok {
			return
		}
		err := res.remove(auth.CurrentUser(c), obj.ID)
		if errors.Is(err, entities.ErrNotFound) {
			ac.view.notFound(c, notFoundMessage(m, obj.ID))
			return
		}
		if err != nil {
			ac.view.serverError(c, err, "delete "+m.Key)
			return
		}
		ac.view.flash(c, fmt.Sprintf("The %s “%s” was deleted successfully.", m.Name, obj.Repr))
		c.Redirect(http.StatusFound, m.URL)
	}
}

func (ac *AdminController) history(res adminResource) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := res.info()
		obj, ok := ac.load(c, res)
		if !ok {
			return
		}
		entries, err := ac.adminLog.History(m.ObjectType, obj.ID)
		if err != nil {
			ac.view.serverError(c, err, "history "+m.Key)
			return
		}

		data := ac.page(c, "Change history: "+obj.Repr,
			breadcrumb{Label: m.Plural, URL: m.URL},
			breadcrumb{Label: obj.Repr, URL: fmt.Sprintf("%s%d/change/", m.URL, obj.ID)},
			breadcrumb{Label: "History"},
		)
		data["Model"] = m
		data["ObjectRepr"] = obj.Repr
		data["Entries"] = entries
		c.HTML(http.StatusOK, "admin_history", data)
	}
}

// load fetches the object named by the :id parameter and renders the 404
// page when it does not exist.
func (ac *AdminController) load(c *gin.Context, res adminResource) (*adminObject, bool) {
	m := res.info()
	id, ok := parseIDParam(c, "id")
	if !ok {
		ac.view.notFound(c, notFoundMessage(m, 0))
		return nil, false
	}
	obj, err := res.get(id)
	if errors.Is(err, entities.ErrNotFound) {
		ac.view.notFound(c, notFoundMessage(m, id))
		return nil, false
	}
	if err != nil {
		ac.view.serverError(c, err, "load "+m.Key)
		return nil, false
	}
	return obj, true
}

func notFoundMessage(m modelInfo, id uint) string {
	if id == 0 {
		return fmt.Sprintf("The %s you asked for does not exist.", m.Name)
	}
	return fmt.Sprintf("%s with ID “%d” doesn’t exist. Perhaps it was deleted?", capitalize(m.Name), id)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
