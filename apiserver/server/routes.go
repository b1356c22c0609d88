package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rollupnet/rollupd/apiserver/controllers"
	"github.com/rollupnet/rollupd/apiserver/utils"
)

const (
	routeParamTxID     = "txID"
	routeParamRollupID = "rollupID"
)

func makeHandler(handler func(routeParams map[string]string) (interface{}, *utils.HandlerError)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		response, hErr := handler(mux.Vars(r))
		if hErr != nil {
			sendErr(w, hErr)
			return
		}
		sendJSONResponse(w, response)
	}
}

func sendErr(w http.ResponseWriter, hErr *utils.HandlerError) {
	log.Warnf("got error: %s", hErr)
	w.WriteHeader(hErr.Code)
	sendJSONResponse(w, struct {
		ErrorCode    int    `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}{
		ErrorCode:    hErr.Code,
		ErrorMessage: hErr.ClientMessage,
	})
}

func sendJSONResponse(w http.ResponseWriter, response interface{}) {
	b, err := json.Marshal(response)
	if err != nil {
		panic(err)
	}
	_, err = w.Write(b)
	if err != nil {
		panic(err)
	}
}

func addRoutes(router *mux.Router) {
	router.HandleFunc("/rollup/{"+routeParamRollupID+"}",
		makeHandler(func(routeParams map[string]string) (interface{}, *utils.HandlerError) {
			return controllers.GetRollupByIDHandler(routeParams[routeParamRollupID])
		})).Methods("GET")

	router.HandleFunc("/transaction/{"+routeParamTxID+"}",
		makeHandler(func(routeParams map[string]string) (interface{}, *utils.HandlerError) {
			return controllers.GetTransactionByIDHandler(routeParams[routeParamTxID])
		})).Methods("GET")

	router.HandleFunc("/status",
		makeHandler(func(routeParams map[string]string) (interface{}, *utils.HandlerError) {
			return controllers.GetStatusHandler()
		})).Methods("GET")
}
