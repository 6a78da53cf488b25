package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"spotfave/internal/shared"
)

func newTestService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.baseURL = server.URL
	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	return srv, server
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "x"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected missing credentials error, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "x"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected missing credentials error, got %v", err)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Unauthenticated Request", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected not authenticated error, got %v", err)
		}
	})

	t.Run("UserPlaylists", func(t *testing.T) {
		t.Run("Walks Pages And Filters Other Owners", func(t *testing.T) {
			var serverURL string
			mux := http.NewServeMux()
			mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"id": "me_user", "display_name": "Me"}`)
			})
			mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
				next := serverURL + "/me/playlists?offset=50"
				if r.URL.Query().Get("offset") == "50" {
					fmt.Fprint(w, `{"items": [
						{"id": "p3", "name": "Third", "owner": {"id": "me_user"}, "tracks": {"total": 3}}
					], "next": null}`)
					return
				}
				fmt.Fprintf(w, `{"items": [
					{"id": "p1", "name": "First", "owner": {"id": "me_user"}, "tracks": {"total": 1}},
					{"id": "p2", "name": "Followed", "owner": {"id": "someone_else"}, "tracks": {"total": 9}}
				], "next": %q}`, next)
			})

			srv, server := newTestService(t, mux)
			serverURL = server.URL

			playlists, err := srv.UserPlaylists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(playlists) != 2 {
				t.Fatalf("expected 2 owned playlists, got %d", len(playlists))
			}
			if playlists[0].ID != "p1" || playlists[1].ID != "p3" {
				t.Errorf("expected p1 then p3, got %s then %s", playlists[0].ID, playlists[1].ID)
			}
		})
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		t.Run("Skips Null Track Entries", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"items": [
					{"track": {"id": "t1", "name": "One", "artists": [{"id": "a1", "name": "A"}], "uri": "spotify:track:t1"}},
					{"track": null},
					{"track": {"id": "t2", "name": "Two", "artists": [{"id": "a2", "name": "B"}], "uri": "spotify:track:t2"}}
				], "next": null}`)
			})

			srv, _ := newTestService(t, mux)

			tracks, err := srv.PlaylistTracks(context.Background(), "p1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}
			if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
				t.Errorf("unexpected track order: %s, %s", tracks[0].ID, tracks[1].ID)
			}
			if tracks[0].Artist != "A" {
				t.Errorf("expected primary artist 'A', got %s", tracks[0].Artist)
			}
		})

		t.Run("Mid Walk Error Returns Partial Tracks", func(t *testing.T) {
			var serverURL string
			calls := 0
			mux := http.NewServeMux()
			mux.HandleFunc("/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
				calls++
				if calls == 1 {
					fmt.Fprintf(w, `{"items": [{"track": {"id": "t1", "name": "One"}}], "next": %q}`, serverURL+"/playlists/p1/tracks?offset=100")
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error": {"message": "boom"}}`)
			})

			srv, server := newTestService(t, mux)
			serverURL = server.URL

			tracks, err := srv.PlaylistTracks(context.Background(), "p1")
			if err == nil {
				t.Fatal("expected error from second page")
			}
			if len(tracks) != 1 {
				t.Errorf("expected partial accumulation of 1 track, got %d", len(tracks))
			}
		})
	})

	t.Run("AudioFeatures", func(t *testing.T) {
		t.Run("Preserves Null Entries", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/audio-features", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"audio_features": [
					{"id": "t1", "danceability": 0.5, "tempo": 120, "key": 0, "mode": 1},
					null
				]}`)
			})

			srv, _ := newTestService(t, mux)

			features, err := srv.AudioFeatures(context.Background(), []string{"t1", "t2"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(features) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(features))
			}
			if features[0] == nil || features[0].Tempo != 120 {
				t.Error("expected first entry populated with tempo 120")
			}
			if features[1] != nil {
				t.Error("expected second entry to stay nil")
			}
		})

		t.Run("Rejects Oversized Batch", func(t *testing.T) {
			srv, _ := newTestService(t, http.NewServeMux())

			ids := make([]string, MaxBatchItems+1)
			if _, err := srv.AudioFeatures(context.Background(), ids); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected invalid argument error, got %v", err)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		t.Run("Missing ID In Response", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"id": "me_user"}`)
			})
			mux.HandleFunc("/users/me_user/playlists", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			})

			srv, _ := newTestService(t, mux)

			_, err := srv.CreatePlaylist(context.Background(), "New Mix", true)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected API request error, got %v", err)
			}
		})
	})

	t.Run("Recommendations", func(t *testing.T) {
		t.Run("Sends Seeds And Targets", func(t *testing.T) {
			var gotQuery string
			mux := http.NewServeMux()
			mux.HandleFunc("/recommendations", func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				fmt.Fprint(w, `{"tracks": [{"id": "r1", "name": "Rec"}, {"id": "r2", "name": "Rec 2"}]}`)
			})

			srv, _ := newTestService(t, mux)

			seeds := SeedSet{
				Tracks:  []string{"spotify:track:t1"},
				Artists: []string{"a1"},
				Genres:  []string{"pop"},
			}
			tracks, err := srv.Recommendations(context.Background(), seeds, map[string]float64{"energy": 0.7}, 20)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 recommendations, got %d", len(tracks))
			}
			if tracks[0].ID != "r1" {
				t.Errorf("expected remote order preserved, got %s first", tracks[0].ID)
			}
			for _, fragment := range []string{"seed_tracks=", "seed_artists=a1", "seed_genres=pop", "target_energy=0.7", "limit=20"} {
				if !strings.Contains(gotQuery, fragment) {
					t.Errorf("expected query to contain %q, got %s", fragment, gotQuery)
				}
			}
		})

		t.Run("Empty Seed Set", func(t *testing.T) {
			srv, _ := newTestService(t, http.NewServeMux())

			_, err := srv.Recommendations(context.Background(), SeedSet{}, nil, 20)
			if !errors.Is(err, shared.ErrNoSeeds) {
				t.Errorf("expected no seeds error, got %v", err)
			}
		})

		t.Run("Seed Limit Enforced Before Remote Call", func(t *testing.T) {
			called := false
			mux := http.NewServeMux()
			mux.HandleFunc("/recommendations", func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			srv, _ := newTestService(t, mux)

			seeds := SeedSet{Tracks: []string{"a", "b", "c"}, Artists: []string{"d", "e"}, Genres: []string{"f"}}
			if _, err := srv.Recommendations(context.Background(), seeds, nil, 20); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected seed limit error, got %v", err)
			}
			if called {
				t.Error("expected no remote call for an oversized seed set")
			}
		})
	})

	t.Run("TopTracks", func(t *testing.T) {
		t.Run("Walks Pages Up To Limit", func(t *testing.T) {
			var serverURL string
			mux := http.NewServeMux()
			mux.HandleFunc("/me/top/tracks", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("time_range") != "long_term" {
					t.Errorf("expected long_term time range, got %s", r.URL.Query().Get("time_range"))
				}
				next := serverURL + "/me/top/tracks?time_range=long_term&offset=2"
				if r.URL.Query().Get("offset") == "2" {
					fmt.Fprint(w, `{"items": [{"id": "t3", "name": "Three"}, {"id": "t4", "name": "Four"}], "next": null}`)
					return
				}
				fmt.Fprintf(w, `{"items": [{"id": "t1", "name": "One"}, {"id": "t2", "name": "Two"}], "next": %q}`, next)
			})

			srv, server := newTestService(t, mux)
			serverURL = server.URL

			tracks, err := srv.TopTracks(context.Background(), TimeRangeLong, 3)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 3 {
				t.Fatalf("expected limit of 3 tracks, got %d", len(tracks))
			}
			if tracks[0].ID != "t1" || tracks[2].ID != "t3" {
				t.Errorf("expected page order preserved, got %s first and %s last", tracks[0].ID, tracks[2].ID)
			}
		})

		t.Run("Rejects Unknown Time Range", func(t *testing.T) {
			srv, _ := newTestService(t, http.NewServeMux())

			if _, err := srv.TopTracks(context.Background(), "last_week", 10); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected invalid argument error, got %v", err)
			}
		})
	})

	t.Run("TopArtists", func(t *testing.T) {
		t.Run("Maps Genres", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/me/top/artists", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"items": [{"id": "a1", "name": "A", "genres": ["pop", "rock"]}], "next": null}`)
			})

			srv, _ := newTestService(t, mux)

			artists, err := srv.TopArtists(context.Background(), TimeRangeMedium, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 1 || len(artists[0].Genres) != 2 {
				t.Fatalf("expected 1 artist with 2 genres, got %v", artists)
			}
		})
	})

	t.Run("RecentlyPlayed", func(t *testing.T) {
		t.Run("Skips Null Track Entries", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/me/player/recently-played", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"items": [
					{"played_at": "2024-06-01T12:00:00Z", "track": {"id": "t1", "name": "One"}},
					{"played_at": "2024-06-01T11:00:00Z", "track": null}
				], "next": null}`)
			})

			srv, _ := newTestService(t, mux)

			tracks, err := srv.RecentlyPlayed(context.Background(), 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 || tracks[0].ID != "t1" {
				t.Errorf("expected the single playable track, got %v", tracks)
			}
		})
	})

	t.Run("Error Mapping", func(t *testing.T) {
		statusCases := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, shared.ErrTokenExpired},
			{http.StatusNotFound, shared.ErrTrackNotFound},
			{http.StatusTooManyRequests, shared.ErrRateLimited},
			{http.StatusBadRequest, shared.ErrAPIRequest},
		}

		for _, tc := range statusCases {
			t.Run(fmt.Sprintf("Status %d", tc.status), func(t *testing.T) {
				mux := http.NewServeMux()
				mux.HandleFunc("/tracks/t1", func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					fmt.Fprint(w, `{"error": {"message": "nope"}}`)
				})

				srv, _ := newTestService(t, mux)

				_, err := srv.Track(context.Background(), "t1")
				if !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}

				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatal("expected an APIError in the chain")
				}
				if apiErr.StatusCode != tc.status {
					t.Errorf("expected status %d, got %d", tc.status, apiErr.StatusCode)
				}
			})
		}

		t.Run("Rate Limit Helper", func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &APIError{StatusCode: 429})
			if !IsRateLimited(err) {
				t.Error("expected IsRateLimited to report true for 429")
			}
			if IsRateLimited(fmt.Errorf("wrapped: %w", &APIError{StatusCode: 400})) {
				t.Error("expected IsRateLimited to report false for 400")
			}
		})
	})
}
