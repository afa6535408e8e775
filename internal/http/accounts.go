package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/settingsstore"
)

type AccountsController struct {
	registry *accounts.Registry
	gate     *capability.Gate
	settings *settingsstore.SettingsStore
}

func NewAccountsController(registry *accounts.Registry, gate *capability.Gate, settings *settingsstore.SettingsStore) *AccountsController {
	return &AccountsController{registry: registry, gate: gate, settings: settings}
}

// AccountView is an account as exposed over the API. Credentials never leave
// the process.
type AccountView struct {
	LocalID                string            `json:"local_id"`
	Service                entities.Service  `json:"service"`
	Name                   string            `json:"name,omitempty"`
	Current                bool              `json:"current"`
	Connected              bool              `json:"connected"`
	Domains                []entities.Domain `json:"domains"`
	LinkedExternalLocalIDs []string          `json:"linked_external_local_ids,omitempty"`
	SchoolYearStart        time.Time         `json:"school_year_start"`
}

func (ac *AccountsController) view(account entities.Account, currentID string) AccountView {
	domains := ac.gate.Supported(account)
	if domains == nil {
		domains = []entities.Domain{}
	}
	return AccountView{
		LocalID:                account.LocalID,
		Service:                account.Service,
		Name:                   account.Name,
		Current:                account.LocalID == currentID,
		Connected:              account.HasSession() || !account.Service.RequiresSession(),
		Domains:                domains,
		LinkedExternalLocalIDs: account.LinkedExternalLocalIDs,
		SchoolYearStart:        account.SchoolYearStart,
	}
}

// List handles GET /api/accounts
func (ac *AccountsController) List(c *gin.Context) {
	var currentID string
	if current, ok := ac.registry.Current(); ok {
		currentID = current.LocalID
	}

	all := ac.registry.Accounts()
	views := make([]AccountView, 0, len(all))
	for _, account := range all {
		views = append(views, ac.view(account, currentID))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": views})
}

// Switch handles POST /api/accounts/:id/switch
// A failed session reload is a bad gateway; the account is current anyway.
func (ac *AccountsController) Switch(c *gin.Context) {
	localID := c.Param("id")

	err := ac.registry.SwitchTo(c.Request.Context(), localID)
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		respondAccountError(c, err, "switch account")
		return
	case err != nil:
		respondError(c, http.StatusBadGateway, "switch_failed", err.Error())
		return
	}

	current, _ := ac.registry.Current()
	if ac.settings != nil {
		if err := ac.settings.SetCurrentAccount(c.Request.Context(), current.LocalID); err != nil {
			log.Printf("[HTTP] Failed to remember current account: %v", err)
		}
	}
	respondSuccess(c, "switched account", ac.view(current, current.LocalID))
}

// forgetCurrent clears the remembered current account when it is id, or
// unconditionally when id is empty.
func (ac *AccountsController) forgetCurrent(c *gin.Context, id string) {
	if ac.settings == nil {
		return
	}
	ctx := c.Request.Context()
	if id != "" && ac.settings.CurrentAccount(ctx) != id {
		return
	}
	if err := ac.settings.SetCurrentAccount(ctx, ""); err != nil {
		log.Printf("[HTTP] Failed to forget current account: %v", err)
	}
}

// Remove handles DELETE /api/accounts/:id
// The account's cache and refresh history go with it.
func (ac *AccountsController) Remove(c *gin.Context) {
	localID := c.Param("id")
	if err := ac.registry.Remove(c.Request.Context(), localID); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			respondAccountError(c, err, "remove account")
			return
		}
		respondInternalError(c, err, "remove account")
		return
	}
	ac.forgetCurrent(c, localID)
	respondSuccess(c, "account removed", gin.H{"local_id": localID})
}

// Logout handles POST /api/accounts/logout
func (ac *AccountsController) Logout(c *gin.Context) {
	if err := ac.registry.Logout(c.Request.Context()); err != nil {
		respondAccountError(c, err, "logout")
		return
	}
	ac.forgetCurrent(c, "")
	respondSuccess(c, "logged out", nil)
}

type UpdateAccountRequest struct {
	Name                   *string   `json:"name" binding:"omitempty,max=200"`
	LinkedExternalLocalIDs *[]string `json:"linked_external_local_ids"`
}

// UpdateCurrent handles PATCH /api/accounts/current
func (ac *AccountsController) UpdateCurrent(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	apply := func(prop accounts.Property, value any) bool {
		err := ac.registry.MutateProperty(ctx, prop, value)
		switch {
		case err == nil:
			return true
		case errors.Is(err, accounts.ErrNoCurrent):
			respondAccountError(c, err, "update account")
		case errors.Is(err, accounts.ErrInvalidProperty), errors.As(err, new(validator.ValidationErrors)):
			respondError(c, http.StatusBadRequest, "invalid_property", err.Error())
		default:
			respondInternalError(c, err, "update account")
		}
		return false
	}

	if req.Name != nil && !apply(accounts.PropertyName, *req.Name) {
		return
	}
	if req.LinkedExternalLocalIDs != nil && !apply(accounts.PropertyLinkedAccounts, *req.LinkedExternalLocalIDs) {
		return
	}

	current, ok := ac.registry.Current()
	if !ok {
		respondAccountError(c, accounts.ErrNoCurrent, "update account")
		return
	}
	respondSuccess(c, "account updated", ac.view(current, current.LocalID))
}
