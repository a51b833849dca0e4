package agriconnect

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"

	"github.com/agriconnect/agriconnect/marketplace"
)

// PageRoutes are the paths the web frontend is mounted on
type PageRoutes struct {
	Landing         string
	Login           string
	Logout          string
	Register        string
	Dashboard       string
	FarmerDashboard string
	BuyerDashboard  string
	Profile         string
}

// PageViews maps handlers to template names
type PageViews struct {
	Landing         string
	Login           string
	Register        string
	FarmerDashboard string
	BuyerDashboard  string
}

// PageController serves the marketplace pages on top of the session store.
// All data operations delegate to the store; the dashboard figures are the
// static samples owned by the marketplace package.
type PageController struct {
	Debug  bool
	Logger Logger
	Store  *Store
	Routes *PageRoutes
	Views  *PageViews
}

type PageControllerOption func(*PageController) *PageController

func WithControllerLogger(logger Logger) PageControllerOption {
	return func(c *PageController) *PageController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) PageControllerOption {
	return func(c *PageController) *PageController {
		c.Debug = debug
		return c
	}
}

func NewPageController(store *Store, opts ...PageControllerOption) *PageController {
	c := &PageController{
		Logger: defLogger{},
		Store:  store,
		Routes: &PageRoutes{
			Landing:         "/",
			Login:           "/login",
			Logout:          "/logout",
			Register:        "/register",
			Dashboard:       "/dashboard",
			FarmerDashboard: "/farmer-dashboard",
			BuyerDashboard:  "/buyer-dashboard",
			Profile:         "/profile",
		},
		Views: &PageViews{
			Landing:         "index",
			Login:           "login",
			Register:        "register",
			FarmerDashboard: "farmer_dashboard",
			BuyerDashboard:  "buyer_dashboard",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing session store in page controller...")
	}

	return c
}

// RegisterPageRoutes mounts the marketplace pages. Dashboards go behind the
// guard with their role constraint; the dashboard chooser only needs a user.
func RegisterPageRoutes[T any](app router.Router[T], c *PageController, g *Guard) {
	app.Get(c.Routes.Landing, c.Landing)

	app.Get(c.Routes.Login, c.LoginShow)
	app.Post(c.Routes.Login, c.LoginPost)
	app.Get(c.Routes.Logout, c.LogOut)

	app.Get(c.Routes.Register, c.RegistrationShow)
	app.Post(c.Routes.Register, c.RegistrationCreate)

	app.Get(c.Routes.Dashboard, c.DashboardShow, g.Protect())
	app.Get(c.Routes.FarmerDashboard, c.FarmerDashboard, g.Protect(RoleFarmer))
	app.Get(c.Routes.BuyerDashboard, c.BuyerDashboard, g.Protect(RoleBuyer))

	app.Post(c.Routes.Profile, c.ProfileUpdate, g.Protect())
}

func (c *PageController) Landing(ctx router.Context) error {
	return ctx.Render(c.Views.Landing, router.ViewContext{
		"state":  c.Store.Snapshot(),
		"stats":  marketplace.SampleStats(),
		"prices": marketplace.SampleMarketPrices(),
	})
}

// DashboardShow routes a signed-in user to the dashboard for their role. An
// unresolved profile falls back to the buyer dashboard, mirroring the guard.
func (c *PageController) DashboardShow(ctx router.Context) error {
	state := c.Store.Snapshot()

	role := RoleBuyer
	if state.Profile != nil {
		role = state.Profile.Role
	}

	return ctx.Redirect(DashboardPathFor(role), http.StatusSeeOther)
}

func (c *PageController) LoginShow(ctx router.Context) error {
	return ctx.Render(c.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginPayload is the login form payload
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (c *PageController) LoginPost(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("login parse payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(http.StatusBadRequest).Render(c.Views.Login, router.ViewContext{
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		c.Logger.Error("login validate payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(c.Views.Login, router.ViewContext{
			"record": payload,
		})
	}

	creds, err := c.Store.SignIn(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		msg := "Login failed, please try again"
		if IsCredentialsError(err) {
			msg = "Invalid email or password"
		}
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  msg,
			"system_message": "Login failed",
		}).Render(c.Views.Login, router.ViewContext{
			"record": payload,
		})
	}

	if c.Debug {
		fmt.Println(print.MaybePrettyJSON(creds.User))
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Welcome back!",
	}).Redirect(c.Routes.Dashboard, http.StatusSeeOther)
}

func (c *PageController) LogOut(ctx router.Context) error {
	if err := c.Store.SignOut(ctx.Context()); err != nil {
		c.Logger.Error("sign out failed: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Sign out failed, you are still logged in",
		}).Redirect(c.Routes.Dashboard, http.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "You have been signed out",
	}).Redirect(c.Routes.Landing, http.StatusSeeOther)
}

func (c *PageController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(c.Views.Register, router.ViewContext{
		"errors":         nil,
		"record":         RegistrationPayload{},
		"counties":       marketplace.KenyanCounties(),
		"farmer_types":   marketplace.FarmerTypes(),
		"business_types": marketplace.BusinessTypes(),
	})
}

// RegistrationPayload is the registration form payload
type RegistrationPayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Role            string `form:"user_role" json:"user_role"`
	County          string `form:"county" json:"county"`
	SubCounty       string `form:"sub_county" json:"sub_county"`
	FarmerType      string `form:"farmer_type" json:"farmer_type"`
	BusinessName    string `form:"business_name" json:"business_name"`
	BusinessType    string `form:"business_type" json:"business_type"`
	MpesaNumber     string `form:"mpesa_number" json:"mpesa_number"`
}

// Validate will validate the payload
func (p RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(
			&p.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(p.Password)),
		),
		validation.Field(&p.Role, validation.In(string(RoleFarmer), string(RoleBuyer))),
	)
}

func (c *PageController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationPayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("register parse payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(http.StatusBadRequest).Render(c.Views.Register, router.ViewContext{
			"record":   payload,
			"counties": marketplace.KenyanCounties(),
		})
	}

	if err := payload.Validate(); err != nil {
		c.Logger.Error("register validate payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(c.Views.Register, router.ViewContext{
			"record":   payload,
			"counties": marketplace.KenyanCounties(),
		})
	}

	creds, err := c.Store.SignUp(ctx.Context(), payload.Email, payload.Password, Signup{
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Role:         Role(payload.Role),
		County:       payload.County,
		SubCounty:    payload.SubCounty,
		FarmerType:   payload.FarmerType,
		BusinessName: payload.BusinessName,
		BusinessType: payload.BusinessType,
		MpesaNumber:  payload.MpesaNumber,
	})
	if err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Registration failed",
		}).Render(c.Views.Register, router.ViewContext{
			"record":   payload,
			"counties": marketplace.KenyanCounties(),
		})
	}

	if creds.RequiresVerification() {
		return flash.WithSuccess(ctx, router.ViewContext{
			"system_message": "Account created. Check your email to verify it before logging in.",
		}).Redirect(c.Routes.Login, http.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Welcome to AgriConnect!",
	}).Redirect(c.Routes.Dashboard, http.StatusSeeOther)
}

func (c *PageController) FarmerDashboard(ctx router.Context) error {
	state := c.Store.Snapshot()

	return ctx.Render(c.Views.FarmerDashboard, router.ViewContext{
		"state":     state,
		"profile":   state.Profile,
		"inventory": marketplace.SampleInventory(),
		"alerts":    marketplace.SamplePriceAlerts(),
		"insight":   marketplace.FarmerInsight,
	})
}

func (c *PageController) BuyerDashboard(ctx router.Context) error {
	state := c.Store.Snapshot()

	return ctx.Render(c.Views.BuyerDashboard, router.ViewContext{
		"state":   state,
		"profile": state.Profile,
		"produce": marketplace.SampleProduce(),
		"orders":  marketplace.SampleOrders(),
		"insight": marketplace.BuyerInsight,
	})
}

// ProfileUpdatePayload carries the editable profile fields
type ProfileUpdatePayload struct {
	FullName    string `form:"full_name" json:"full_name"`
	County      string `form:"county" json:"county"`
	SubCounty   string `form:"sub_county" json:"sub_county"`
	PhoneNumber string `form:"phone_number" json:"phone_number"`
	MpesaNumber string `form:"mpesa_number" json:"mpesa_number"`
}

func (p ProfileUpdatePayload) fields() map[string]any {
	fields := map[string]any{}
	if p.FullName != "" {
		fields["full_name"] = p.FullName
	}
	if p.County != "" {
		fields["county"] = p.County
	}
	if p.SubCounty != "" {
		fields["sub_county"] = p.SubCounty
	}
	if p.PhoneNumber != "" {
		fields["phone_number"] = NormalizePhone(p.PhoneNumber)
	}
	if p.MpesaNumber != "" {
		fields["mpesa_number"] = NormalizePhone(p.MpesaNumber)
	}
	return fields
}

func (c *PageController) ProfileUpdate(ctx router.Context) error {
	payload := new(ProfileUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("profile update parse payload: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(http.StatusBadRequest).Redirect(c.Routes.Dashboard, http.StatusSeeOther)
	}

	if err := c.Store.UpdateProfile(ctx.Context(), payload.fields()); err != nil {
		c.Logger.Error("profile update failed: %s", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Profile update failed",
		}).Redirect(c.Routes.Dashboard, http.StatusSeeOther)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Profile updated",
	}).Redirect(c.Routes.Dashboard, http.StatusSeeOther)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("values must match")
		}
		return nil
	}
}
