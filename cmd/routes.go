package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	jsonMiddleware := standardMiddleware.Append(makeResponseJSON)

	mux := pat.New()

	mux.Get("/health", jsonMiddleware.ThenFunc(app.healthHandler.Health))

	// Items
	mux.Get("/items", jsonMiddleware.ThenFunc(app.itemHandler.GetItems))
	mux.Post("/items", jsonMiddleware.ThenFunc(app.itemHandler.CreateItem))
	mux.Get("/items/:id", jsonMiddleware.ThenFunc(app.itemHandler.GetItemByID))
	mux.Del("/items/:id", jsonMiddleware.ThenFunc(app.itemHandler.DeleteItem))

	// Generation
	mux.Post("/items/:id/suggestions", jsonMiddleware.ThenFunc(app.suggestionHandler.GetOutfitSuggestions))
	mux.Post("/items/:id/enquiry", jsonMiddleware.ThenFunc(app.enquiryHandler.SendEnquiry))

	// Live feed
	mux.Get("/ws/items", standardMiddleware.ThenFunc(app.ItemFeedHandler))

	return mux
}
