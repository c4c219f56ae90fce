package main

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/naiba/gymkit/model"
)

var (
	contactCmd = &cobra.Command{
		Use:   "contact",
		Short: "Show contact details of the selected gym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := gymkit.Contact.Info(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
	contactSendCmd = &cobra.Command{
		Use:   "send",
		Short: "Send a message to the selected gym",
		Args:  cobra.NoArgs,
		RunE:  sendContact,
	}

	contactMsg model.ContactMessage
)

func init() {
	f := contactSendCmd.Flags()
	f.StringVarP(&contactMsg.Name, "name", "n", "", "姓名")
	f.StringVarP(&contactMsg.Email, "email", "e", "", "邮箱")
	f.StringVar(&contactMsg.Phone, "phone", "", "电话")
	f.StringVarP(&contactMsg.Subject, "subject", "s", "", "主题")
	f.StringVarP(&contactMsg.Message, "message", "m", "", "内容")
	contactCmd.AddCommand(contactSendCmd)
}

func sendContact(cmd *cobra.Command, args []string) error {
	if err := ask(&contactMsg.Name, &survey.Input{Message: "Your name:"}); err != nil {
		return err
	}
	if err := ask(&contactMsg.Email, &survey.Input{Message: "Your email:"}); err != nil {
		return err
	}
	if err := ask(&contactMsg.Message, &survey.Multiline{Message: "Message:"}); err != nil {
		return err
	}
	msg, err := gymkit.Contact.Submit(ctx, contactMsg)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"message": msg})
}
