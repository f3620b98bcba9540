package main

import (
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/toothbrush/wp-export/wordpress"
	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

// newAPI builds a WordPress client from the global flags. The returned stop function must be called
// when done, it flushes the VCR cassette if there is one.
func newAPI(requireAuth bool) (*wordpress.API, func(), error) {
	if SiteURL == "" {
		return nil, nil, fmt.Errorf("wp-export: please provide --site-url")
	}

	password := ""
	if len(AuthPasswordCmd) > 0 {
		passwordCmdOutput, err := exec.Command(AuthPasswordCmd[0], AuthPasswordCmd[1:]...).Output()
		if err != nil {
			return nil, nil, fmt.Errorf("wp-export: couldn't execute auth-password-cmd '%v': %w", AuthPasswordCmd, err)
		}
		password = strings.Split(string(passwordCmdOutput), "\n")[0]
	}
	if requireAuth && (AuthUsername == "" || password == "") {
		return nil, nil, fmt.Errorf("wp-export: please provide --auth-username and --auth-password-cmd")
	}

	api, err := wordpress.NewAPI(SiteURL, AuthUsername, password)
	if err != nil {
		return nil, nil, fmt.Errorf("wp-export: couldn't instantiate WordPress API: %w", err)
	}

	stop := func() {}
	if WithVCR {
		// set up VCR recordings.
		opts := &recorder.Options{
			CassetteName:       "fixtures/wp-export",
			Mode:               recorder.ModeReplayWithNewEpisodes,
			SkipRequestLatency: true,
			RealTransport:      http.DefaultTransport,
		}
		r, err := recorder.NewWithOptions(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("wp-export: couldn't set up go-vcr recording: %w", err)
		}

		// Add a hook which removes Authorization headers from all requests
		hook := func(i *cassette.Interaction) error {
			delete(i.Request.Headers, "Authorization")
			return nil
		}
		r.AddHook(hook, recorder.AfterCaptureHook)
		r.SetReplayableInteractions(true)

		api.Client = r.GetDefaultClient()
		api.Client.Timeout = 30 * time.Second

		stop = func() {
			if err := r.Stop(); err != nil {
				debugLog("Couldn't save VCR cassette: %v\n", err)
			}
		}
	}

	return api, stop, nil
}
