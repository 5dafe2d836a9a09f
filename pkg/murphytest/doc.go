// Package murphytest provides helpers for testing code that runs behind a
// murphy scenario.
//
// An Upstream is an httptest server that records every request it receives,
// so tests can tell injected responses from real ones by counting hits:
//
//	func TestCheckoutSurvivesOutage(t *testing.T) {
//	    up := murphytest.NewUpstream(t)
//	    client := up.Client(murphy.NewScenario(
//	        murphy.NewRule().Matches(murphy.Path("/pay")).Causes(murphy.Status(503)).MustBuild(),
//	    ))
//
//	    resp, err := client.Get(up.URL() + "/pay")
//	    require.NoError(t, err)
//	    murphytest.AssertInjected(t, resp, 503, "")
//	    up.AssertHits(t, 0)
//	}
//
// Ctx builds request contexts for matcher and effect tests without going
// through net/http.
package murphytest
