package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

type templateSource struct {
	subject string
	text    string
	html    string
}

var templateSources = map[Template]templateSource{
	TemplateOrderCreated: {
		subject: "订单已创建 - {{.OrderNo}}",
		text:    "您的订单 {{.OrderNo}} 已创建，应付金额 ¥{{.Amount}}，请在 {{.ExpiredAt}} 前完成支付。",
		html: `<h2>订单已创建</h2>
<p>您好 {{.Nickname}}，您在 {{.SiteName}} 的订单已创建。</p>
<table>
<tr><td>订单号</td><td>{{.OrderNo}}</td></tr>
<tr><td>商品</td><td>{{.ProductName}}</td></tr>
<tr><td>应付金额</td><td>¥{{.Amount}}</td></tr>
<tr><td>支付截止</td><td>{{.ExpiredAt}}</td></tr>
</table>
<p>请扫描支付页面上的二维码完成付款，付款后点击"我已支付"等待确认。</p>`,
	},
	TemplatePendingConfirm: {
		subject: "待确认支付 - {{.OrderNo}}",
		text:    "订单 {{.OrderNo}} 已提交支付（{{.PaymentMethod}}，¥{{.Amount}}），请尽快确认。",
		html: `<h2>有新的支付待确认</h2>
<table>
<tr><td>订单号</td><td>{{.OrderNo}}</td></tr>
<tr><td>用户</td><td>{{.BuyerID}}</td></tr>
<tr><td>支付方式</td><td>{{.PaymentMethod}}</td></tr>
<tr><td>金额</td><td>¥{{.Amount}}</td></tr>
</table>
<p><a href="{{.SiteURL}}/admin/orders/{{.OrderID}}">前往后台确认</a></p>`,
	},
	TemplatePaymentSuccess: {
		subject: "支付成功 - {{.OrderNo}}",
		text:    "订单 {{.OrderNo}} 支付已确认，{{.ProductName}} 已开通。",
		html: `<h2>支付成功</h2>
<p>您好 {{.Nickname}}，订单 {{.OrderNo}} 的支付已确认。</p>
<p>{{.ProductName}} 已为您开通，现在就可以开始学习了。</p>
<p><a href="{{.SiteURL}}/my-courses">进入我的课程</a></p>`,
	},
	TemplateOrderCancelled: {
		subject: "订单已取消 - {{.OrderNo}}",
		text:    "订单 {{.OrderNo}} 已取消。{{.Note}}",
		html: `<h2>订单已取消</h2>
<p>您好 {{.Nickname}}，订单 {{.OrderNo}} 已取消。</p>
{{if .Note}}<p>原因：{{.Note}}</p>{{end}}`,
	},
	TemplateOrderRefunded: {
		subject: "订单已退款 - {{.OrderNo}}",
		text:    "订单 {{.OrderNo}} 已退款 ¥{{.Amount}}，相关课程权限已收回。",
		html: `<h2>订单已退款</h2>
<p>您好 {{.Nickname}}，订单 {{.OrderNo}} 已退款 ¥{{.Amount}}。</p>
<p>相关课程或会员权限已收回。</p>`,
	},
}

type compiledTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var compiled = func() map[Template]compiledTemplate {
	out := make(map[Template]compiledTemplate, len(templateSources))
	for name, src := range templateSources {
		out[name] = compiledTemplate{
			subject: texttemplate.Must(texttemplate.New(string(name) + ".subject").Option("missingkey=zero").Parse(src.subject)),
			text:    texttemplate.Must(texttemplate.New(string(name) + ".text").Option("missingkey=zero").Parse(src.text)),
			html:    htmltemplate.Must(htmltemplate.New(string(name) + ".html").Option("missingkey=zero").Parse(src.html)),
		}
	}
	return out
}()

// Render 渲染模板
func Render(tpl Template, to Recipient, data map[string]any) (Message, error) {
	t, ok := compiled[tpl]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", tpl)
	}

	vars := make(map[string]any, len(data)+1)
	for k, v := range data {
		vars[k] = v
	}
	if _, ok := vars["Nickname"]; !ok {
		vars["Nickname"] = to.Nickname
	}

	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, vars); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", tpl, err)
	}
	if err := t.text.Execute(&text, vars); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", tpl, err)
	}
	if err := t.html.Execute(&html, vars); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", tpl, err)
	}

	return Message{
		To:      to,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
		Ext:     map[string]string{"template": string(tpl)},
	}, nil
}
