package services

import (
	"context"
	"errors"
	"strings"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/plaid/plaid-go/v20/plaid"
)

const (
	linkClientName   = "Financial SuperApp"
	linkLanguage     = "en"
	transactionsPage = 500
)

type PlaidConfig struct {
	ClientID    string
	Secret      string
	Env         string
	RedirectURL string

	// BaseURL overrides the environment host.
	BaseURL string
}

type PlaidService struct {
	Client      *plaid.APIClient
	redirectURI string
}

func NewPlaidService(cfg PlaidConfig) *PlaidService {
	var env plaid.Environment
	switch cfg.Env {
	case "production":
		env = plaid.Production
	case "development":
		env = plaid.Development
	default:
		env = plaid.Sandbox
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	configuration.UseEnvironment(env)
	if cfg.BaseURL != "" {
		configuration.Servers = plaid.ServerConfigurations{{URL: cfg.BaseURL}}
	}

	redirectURI := ""
	if cfg.RedirectURL != "" {
		redirectURI = cfg.RedirectURL
		if !strings.HasSuffix(redirectURI, "/") {
			redirectURI += "/"
		}
	}

	return &PlaidService{
		Client:      plaid.NewAPIClient(configuration),
		redirectURI: redirectURI,
	}
}

// CreateLinkToken returns a short-lived token the frontend uses to open Plaid Link.
func (s *PlaidService) CreateLinkToken(ctx context.Context, userID string) (*models.LinkToken, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: userID,
	}

	request := plaid.NewLinkTokenCreateRequest(
		linkClientName,
		linkLanguage,
		[]plaid.CountryCode{plaid.COUNTRYCODE_US, plaid.COUNTRYCODE_CA},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS, plaid.PRODUCTS_AUTH})
	if s.redirectURI != "" {
		request.SetRedirectUri(s.redirectURI)
	}

	resp, _, err := s.Client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return nil, formatPlaidError("link token create", err)
	}

	return &models.LinkToken{
		Token:      resp.GetLinkToken(),
		Expiration: resp.GetExpiration(),
	}, nil
}

// ExchangePublicToken trades the Link public token for a long-lived access token and item id.
func (s *PlaidService) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)

	resp, _, err := s.Client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", formatPlaidError("public token exchange", err)
	}

	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (s *PlaidService) GetAccounts(ctx context.Context, accessToken string) ([]models.ProviderAccount, error) {
	request := plaid.NewAccountsGetRequest(accessToken)

	resp, _, err := s.Client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, formatPlaidError("accounts get", err)
	}

	accounts := make([]models.ProviderAccount, 0, len(resp.GetAccounts()))
	for _, a := range resp.GetAccounts() {
		accounts = append(accounts, toProviderAccount(a))
	}
	return accounts, nil
}

// GetTransactions pages through every transaction of one account between start and end (inclusive, YYYY-MM-DD).
func (s *PlaidService) GetTransactions(ctx context.Context, accessToken, accountID, start, end string) ([]models.ProviderTransaction, error) {
	var out []models.ProviderTransaction

	for {
		options := plaid.NewTransactionsGetRequestOptions()
		options.SetAccountIds([]string{accountID})
		options.SetCount(transactionsPage)
		options.SetOffset(int32(len(out)))

		request := plaid.NewTransactionsGetRequest(accessToken, start, end)
		request.SetOptions(*options)

		resp, _, err := s.Client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return nil, formatPlaidError("transactions get", err)
		}

		page := resp.GetTransactions()
		for _, t := range page {
			out = append(out, toProviderTransaction(t))
		}

		if len(page) == 0 || len(out) >= int(resp.GetTotalTransactions()) {
			break
		}
	}

	return out, nil
}

func toProviderAccount(a plaid.AccountBase) models.ProviderAccount {
	balances := a.GetBalances()

	account := models.ProviderAccount{
		ProviderAccountID: a.GetAccountId(),
		Name:              a.GetName(),
		Type:              string(a.GetType()),
		Subtype:           string(a.GetSubtype()),
		Mask:              a.GetMask(),
		CurrencyCode:      balances.GetIsoCurrencyCode(),
	}
	if current, ok := balances.GetCurrentOk(); ok && current != nil {
		v := *current
		account.CurrentBalance = &v
	}
	if available, ok := balances.GetAvailableOk(); ok && available != nil {
		v := *available
		account.AvailableBalance = &v
	}
	return account
}

func toProviderTransaction(t plaid.Transaction) models.ProviderTransaction {
	return models.ProviderTransaction{
		ProviderTransactionID: t.GetTransactionId(),
		ProviderAccountID:     t.GetAccountId(),
		Amount:                t.GetAmount(),
		Name:                  t.GetName(),
		MerchantName:          t.GetMerchantName(),
		Date:                  t.GetDate(),
		Category:              t.GetCategory(),
	}
}

// formatPlaidError keeps the raw Plaid error body as detail when there is one.
func formatPlaidError(op string, err error) error {
	providerErr := &ProviderError{Op: op, Err: err}

	var apiErr plaid.GenericOpenAPIError
	if errors.As(err, &apiErr) {
		providerErr.Detail = string(apiErr.Body())
	}

	utils.LogBankingFailure(op, "", "", providerErr)
	return providerErr
}
