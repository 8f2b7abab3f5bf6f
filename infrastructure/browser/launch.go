package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ui_resolver/domain/interfaces"
	"ui_resolver/infrastructure/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/multierr"
)

const chromeDriverPort = 9515

var chromeArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-dev-shm-usage",
	"--no-sandbox",
}

// CloseFunc releases everything Launch started
type CloseFunc func() error

// Launch - starts a browser with the configured driver, opens url and
// returns a session over the loaded page
func Launch(ctx context.Context, cfg config.BrowserConfig, url string, logger *logrus.Logger) (interfaces.Session, CloseFunc, error) {
	logger.Infof("Launching %s browser (headless=%t)", cfg.Driver, cfg.Headless)

	switch cfg.Driver {
	case "playwright", "":
		return launchPlaywright(cfg, url, logger)
	case "selenium":
		return launchSelenium(cfg, url, logger)
	case "rod":
		return launchRod(ctx, cfg, url, logger)
	default:
		return nil, nil, fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}
}

func launchPlaywright(cfg config.BrowserConfig, url string, logger *logrus.Logger) (interfaces.Session, CloseFunc, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     chromeArgs,
	})
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to launch browser: %w", err), pw.Stop())
	}

	closeAll := func() error {
		return multierr.Combine(browser.Close(), pw.Stop())
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to create page: %w", err), closeAll())
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to navigate to %s: %w", url, err), closeAll())
	}

	return NewPlaywrightSession(page, logger), closeAll, nil
}

func launchSelenium(cfg config.BrowserConfig, url string, logger *logrus.Logger) (interfaces.Session, CloseFunc, error) {
	driverPath, err := findChromeDriver(cfg.DriverPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	args := append([]string{}, chromeArgs...)
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	chromeCaps := chrome.Capabilities{Args: args}
	if bin := findChromeBinary(); bin != "" {
		logger.Infof("Using Chrome binary at: %s", bin)
		chromeCaps.Path = bin
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort))
	if err != nil {
		stopErr := service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			err = fmt.Errorf("chrome browser not found, install it or set CHROME_BINARY_PATH: %w", err)
		}
		return nil, nil, multierr.Append(fmt.Errorf("failed to create webdriver: %w", err), stopErr)
	}

	closeAll := func() error {
		return multierr.Combine(wd.Quit(), service.Stop())
	}

	if err := wd.Get(url); err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to navigate to %s: %w", url, err), closeAll())
	}

	return NewSeleniumSession(wd, logger), closeAll, nil
}

func launchRod(ctx context.Context, cfg config.BrowserConfig, url string, logger *logrus.Logger) (interfaces.Session, CloseFunc, error) {
	l := launcher.New().Headless(cfg.Headless)
	if bin := findChromeBinary(); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect to chrome: %w", err)
	}

	closeAll := func() error {
		err := browser.Close()
		l.Cleanup()
		return err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to open %s: %w", url, err), closeAll())
	}
	if err := page.WaitLoad(); err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to load %s: %w", url, err), closeAll())
	}

	return NewRodSession(page, logger), closeAll, nil
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found, install it or set BROWSER_DRIVER_PATH")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary() string {
	if path := os.Getenv("CHROME_BINARY_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}
