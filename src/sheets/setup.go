package sheets

import (
	"context"
	"encoding/base64"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jiaming2012/lattice-pricer/src/utils"
)

const CredentialsEnvKey = "GOOGLE_SECURITY_KEY_JSON_BASE64"

// Client holds the Sheets and Drive services of one service account.
type Client struct {
	Sheets *sheets.Service
	Drive  *drive.Service
}

// NewClient authenticates with a base64 encoded service account key.
func NewClient(ctx context.Context, credentialsBase64 string) (*Client, error) {
	credentials, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("NewClient: failed to decode service account key: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("NewClient: %w", err)
	}

	httpClient := option.WithHTTPClient(config.Client(ctx))

	sheetsSrv, err := sheets.NewService(ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("NewClient: sheets: %w", err)
	}

	driveSrv, err := drive.NewService(ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("NewClient: drive: %w", err)
	}

	return &Client{Sheets: sheetsSrv, Drive: driveSrv}, nil
}

func NewClientFromEnv(ctx context.Context) (*Client, error) {
	credentials, err := utils.GetEnv(CredentialsEnvKey)
	if err != nil {
		return nil, fmt.Errorf("NewClientFromEnv: %w", err)
	}

	return NewClient(ctx, credentials)
}

// OpenWorkbook returns the workbook stored in an existing spreadsheet.
func (c *Client) OpenWorkbook(spreadsheetId string) *Workbook {
	return NewWorkbook(NewSpreadsheetAPI(c.Sheets), spreadsheetId)
}

// CreateWorkbook creates an empty workbook and, when folderId is set, moves it
// into that Drive folder.
func (c *Client) CreateWorkbook(ctx context.Context, title string, folderId string) (*Workbook, error) {
	created, err := createSpreadsheet(ctx, c.Sheets, c.Drive, title, folderId)
	if err != nil {
		return nil, err
	}

	log.WithContext(ctx).Infof("created spreadsheet %s: %s", created.SpreadsheetId, created.SpreadsheetUrl)
	return c.OpenWorkbook(created.SpreadsheetId), nil
}
