// ABOUTME: Help and setup cards
// ABOUTME: Topic help for the common commands plus an overview with the map link

package chat

import (
	"fmt"
	"strings"
)

// MapLink returns the web view address for serverID, or "" without a map URL.
func (e *Engine) MapLink(serverID string) string {
	if e.opts.MapURL == "" || serverID == "" {
		return ""
	}
	return strings.TrimRight(e.opts.MapURL, "/") + "/?map=" + serverID
}

func (e *Engine) help(inv Invocation) (Reply, error) {
	topic := ""
	if len(inv.Args) > 0 {
		topic = strings.ToLower(strings.TrimPrefix(inv.Args[0], e.opts.Prefix))
	}
	p := e.opts.Prefix

	switch topic {
	case "addstop":
		return topicCard("addstop", "This command is used to add a new stop to the map, and can be used in two different ways.\n"+
			"The first is to specify the latitude and longitude like so '"+p+"addstop test 42.46 -76.51'.\n"+
			"The second is to give an ingress intel url like so '"+p+"addstop test https://intel.ingress.com/intel?ll=42.447358,-76.48151&z=18&pll=42.46,-76.51'.\n"+
			"A map link with ll and q parameters also works, and the q name is used for the stop.\n\n"+
			"The Ingress Intel Map (https://intel.ingress.com/intel) can be used to generate the url by clicking on a portal then clicking the Link button at the top right of the page."), nil
	case "addtask":
		maintainer := "the bot maintainer"
		if e.opts.MaintainerID != "" {
			maintainer = e.opts.MaintainerID
		}
		return topicCard("addtask", "This command lets you add a new task to the tasklist after research changes. If you do so please notify "+maintainer+" so they can make sure new tasks show up correctly on the map.\n\n"+
			"The correct syntax for the command is "+p+"addtask reward quest shiny*\n"+
			"Values should be put in quotations if they are more than single words (shiny is optional).\n"+
			"shiny should be either 'True' or 'False'."), nil
	case "listtasks", "tasklist":
		return topicCard("listtasks", "This command instructs the bot to list all the tasks it currently knows."), nil
	case "resetstop":
		return topicCard("resetstop", "This command removes any tasks associated with a stop. Use if a stop was misreported.\n\n"+
			"The correct syntax for the command is "+p+"resetstop stop_name"), nil
	case "settask":
		return topicCard("settask", "This command assigns a task to a stop.\n\n"+
			"The correct syntax for the command is "+p+"settask reward stop_name\n"+
			"If the reward is more than 1 word it should be enclosed with quotation marks.\n\n"+
			"Tasks can also be assigned by saying the name of a stop then the name of a task (in different messages). If this is successful the bot should give a thumbs up to both messages.\n"+
			"Saying \"shadow pokemon\" instead of a task records a shadow sighting, and \"shadow gone\" clears it."), nil
	case "advanced":
		return Cards(Card{Sections: []Section{
			{Name: p + "deletetask", Value: "Remove a task from the list."},
			{Name: p + "deletestop", Value: "Remove a stop from the local map."},
			{Name: p + "nicknamestop", Value: "Give a stop another name: " + p + "nicknamestop \"stop name\" nickname"},
			{Name: p + "nicknametask", Value: "Give a task another name: " + p + "nicknametask \"task\" nickname"},
			{Name: p + "stopinfo", Value: "Show a stop's location, nicknames, task and shadow sighting."},
			{Name: p + "resettasklist", Value: "Completely clear the tasklist. Use only if the tasklist has become corrupted, otherwise use the deletetask command to remove unwanted tasks one by one."},
			{Name: p + "resetall", Value: "Reset all the stops in the map. Use when an event causes research changes (Requires admin)."},
		}}), nil
	case "setup":
		return Cards(e.setupCard()), nil
	}

	card := Card{Sections: []Section{
		{Name: p + "addstop", Value: "Add a new stop to the map."},
		{Name: p + "addtask", Value: "Define a new task and reward set."},
		{Name: p + "listtasks", Value: "Lists all tasks the bot currently knows along with their rewards."},
		{Name: p + "resetstop", Value: "Removes any task associated with a given stop. Use if a stop was misreported."},
		{Name: p + "settask", Value: "Assign a task to a stop."},
		{Name: "For more info", Value: fmt.Sprintf("Use \"%shelp command\" for more info on a command, or use \"%shelp advanced\" to get information on commands for advanced users.", p, p)},
	}}
	if link := e.MapLink(inv.ServerID); link != "" {
		card.Sections = append(card.Sections, Section{Name: "To view the current map", Value: link})
	}
	return Cards(card), nil
}

func topicCard(name, text string) Reply {
	return Cards(Card{Sections: []Section{{Name: name, Value: text}}})
}

func (e *Engine) setupCard() Card {
	p := e.opts.Prefix
	text := "- First setup the location of your map by using \"" + p + "setlocation lat long\", with lat and long being the latitude and longitude near the center of your map area.\n" +
		"- Then define the bounds of your map using \"" + p + "setbounds lat1 long1 lat2 long2\" where the latitudes and longitudes are from opposite corners of your map boundary (SW and NE recommended). " +
		"The extent of your boundary should be less than one degree of latitude and longitude.\n" +
		"- Lastly set the timezone your map is in (so it resets at midnight correctly) using \"" + p + "settimezone timezone_str\" where timezone_str is an IANA zone name such as America/New_York."
	return Card{Sections: []Section{{Name: "Initial Setup Commands", Value: text}}}
}
